package controllers

import (
	"net/http"

	"github.com/diamantrouge/maison/app/services"
	"github.com/diamantrouge/maison/pkg/ctx"
)

type CartController struct {
	service *services.CartService
}

func NewCartController(service *services.CartService) *CartController {
	return &CartController{service: service}
}

func (cc *CartController) Index(c *ctx.Context) {
	lines, err := cc.service.List(c.Context(), c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(lines)
}

func (cc *CartController) Add(c *ctx.Context) {
	var in services.AddToCartInput
	if !c.BindJSONWith(&in, http.StatusBadRequest) {
		return
	}
	line, err := cc.service.Add(c.Context(), c.UserID(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(line)
}

// Update sets the quantity of the line named by ?id=.
func (cc *CartController) Update(c *ctx.Context) {
	lineID, ok := c.QueryUint("id")
	if !ok {
		c.Error(http.StatusBadRequest, "Le paramètre id est requis")
		return
	}
	var in struct {
		Quantity int `json:"quantity" validate:"required,gte=1"`
	}
	if !c.BindJSONWith(&in, http.StatusBadRequest) {
		return
	}
	line, err := cc.service.UpdateQuantity(c.Context(), c.UserID(), lineID, in.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(line)
}

// Remove deletes one line (?id=) or empties the cart (?clear=true).
func (cc *CartController) Remove(c *ctx.Context) {
	if c.Query("clear") == "true" {
		n, err := cc.service.Clear(c.Context(), c.UserID())
		if err != nil {
			fail(c, err)
			return
		}
		c.Message(http.StatusOK, "Panier vidé", map[string]int64{"removed": n})
		return
	}

	lineID, ok := c.QueryUint("id")
	if !ok {
		c.Error(http.StatusBadRequest, "Le paramètre id est requis")
		return
	}
	if err := cc.service.Remove(c.Context(), c.UserID(), lineID); err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusOK, "Article retiré du panier", nil)
}
