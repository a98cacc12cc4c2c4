package controllers

import (
	"net/http"

	"github.com/diamantrouge/maison/app/services"
	"github.com/diamantrouge/maison/pkg/ctx"
	"github.com/diamantrouge/maison/pkg/session"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

func (ac *AuthController) Signup(c *ctx.Context) {
	var in services.SignupInput
	if !c.BindJSONWith(&in, http.StatusBadRequest) {
		return
	}
	u, err := ac.service.Signup(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusCreated, "Compte créé avec succès", u)
}

type credentials struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (ac *AuthController) Login(c *ctx.Context) {
	var in credentials
	if !c.BindJSONWith(&in, http.StatusBadRequest) {
		return
	}
	login, err := ac.service.Login(c.Context(), in.Email, in.Password)
	if err != nil {
		fail(c, err)
		return
	}
	session.SetCookie(c.W, login.Token, login.TTL)
	c.Success(login)
}

func (ac *AuthController) Logout(c *ctx.Context) {
	if cl, ok := c.Claims(); ok {
		if err := ac.service.Logout(c.Context(), cl.ID); err != nil {
			fail(c, err)
			return
		}
	}
	session.ClearCookie(c.W)
	c.Message(http.StatusOK, "Déconnexion réussie", nil)
}

func (ac *AuthController) RequestPasswordReset(c *ctx.Context) {
	var in struct {
		Email string `json:"email" validate:"required,email"`
	}
	if !c.BindJSONWith(&in, http.StatusBadRequest) {
		return
	}
	if err := ac.service.RequestPasswordReset(c.Context(), in.Email); err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusOK, "Si un compte existe pour cet email, un lien de réinitialisation a été envoyé", nil)
}

func (ac *AuthController) UpdatePassword(c *ctx.Context) {
	var in services.UpdatePasswordInput
	if !c.BindJSONWith(&in, http.StatusBadRequest) {
		return
	}
	if err := ac.service.UpdatePassword(c.Context(), in); err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusOK, "Mot de passe mis à jour", nil)
}
