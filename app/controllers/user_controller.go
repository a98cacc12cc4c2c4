package controllers

import (
	"net/http"

	"github.com/diamantrouge/maison/app/services"
	"github.com/diamantrouge/maison/pkg/ctx"
)

// UserController is the back-office view of customer accounts.
type UserController struct {
	service *services.UserService
}

func NewUserController(service *services.UserService) *UserController {
	return &UserController{service: service}
}

func (uc *UserController) Index(c *ctx.Context) {
	users, err := uc.service.List(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(users)
}

func (uc *UserController) Update(c *ctx.Context) {
	uid, ok := id(c)
	if !ok {
		return
	}
	var in services.AdminUserInput
	if !c.BindJSONWith(&in, http.StatusBadRequest) {
		return
	}
	u, err := uc.service.Update(c.Context(), uid, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusOK, "Utilisateur mis à jour", u)
}

func (uc *UserController) Destroy(c *ctx.Context) {
	uid, ok := id(c)
	if !ok {
		return
	}
	if uid == c.UserID() {
		c.Error(http.StatusBadRequest, "Vous ne pouvez pas supprimer votre propre compte")
		return
	}
	if err := uc.service.Delete(c.Context(), uid); err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusOK, "Utilisateur supprimé", nil)
}

func (uc *UserController) Cart(c *ctx.Context) {
	uid, ok := id(c)
	if !ok {
		return
	}
	lines, err := uc.service.Cart(c.Context(), uid)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(lines)
}
