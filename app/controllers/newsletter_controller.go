package controllers

import (
	"net/http"

	"github.com/diamantrouge/maison/app/services"
	"github.com/diamantrouge/maison/pkg/ctx"
)

type NewsletterController struct {
	service *services.NewsletterService
}

func NewNewsletterController(service *services.NewsletterService) *NewsletterController {
	return &NewsletterController{service: service}
}

// Subscribe answers 201 for a new address and 200 when it was already on
// the list.
func (nc *NewsletterController) Subscribe(c *ctx.Context) {
	var in struct {
		Email string `json:"email"`
	}
	if !c.BindJSONWith(&in, http.StatusBadRequest) {
		return
	}
	sub, created, err := nc.service.Subscribe(c.Context(), in.Email)
	if err != nil {
		fail(c, err)
		return
	}
	if !created {
		c.Message(http.StatusOK, "Vous êtes déjà inscrit", sub)
		return
	}
	c.Message(http.StatusCreated, "Bienvenue dans le Cercle Diamant Rouge", sub)
}

func (nc *NewsletterController) Unsubscribe(c *ctx.Context) {
	email, err := nc.service.Unsubscribe(c.Context(), c.Query("token"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusOK, "Désinscription confirmée", map[string]string{"email": email})
}

func (nc *NewsletterController) AdminIndex(c *ctx.Context) {
	subs, err := nc.service.List(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(subs)
}

func (nc *NewsletterController) Send(c *ctx.Context) {
	var in services.CampaignInput
	if !c.BindJSONWith(&in, http.StatusBadRequest) {
		return
	}
	n, err := nc.service.Send(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusOK, "Newsletter envoyée", map[string]int{"queued": n})
}

func (nc *NewsletterController) Destroy(c *ctx.Context) {
	sid, ok := id(c)
	if !ok {
		return
	}
	if err := nc.service.Delete(c.Context(), sid); err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusOK, "Abonné supprimé", nil)
}
