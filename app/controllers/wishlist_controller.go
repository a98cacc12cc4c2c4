package controllers

import (
	"net/http"

	"github.com/diamantrouge/maison/app/models"
	"github.com/diamantrouge/maison/app/services"
	"github.com/diamantrouge/maison/pkg/ctx"
	"github.com/diamantrouge/maison/pkg/resource"
)

type WishlistController struct {
	service *services.WishlistService
}

func NewWishlistController(service *services.WishlistService) *WishlistController {
	return &WishlistController{service: service}
}

var wishlistEntry = resource.Transformer[models.Wishlist](func(w models.Wishlist) resource.Map {
	return resource.Map{"id": w.ID, "productId": w.ProductID}
})

type wishlistInput struct {
	ProductID uint `json:"productId"`
}

func (wc *WishlistController) Index(c *ctx.Context) {
	items, err := wc.service.List(c.Context(), c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.SetHeader("Cache-Control", "private, max-age=10")
	c.Success(wishlistEntry.Many(items))
}

func (wc *WishlistController) Add(c *ctx.Context) {
	var in wishlistInput
	if !c.BindJSONWith(&in, http.StatusBadRequest) {
		return
	}
	w, err := wc.service.Add(c.Context(), c.UserID(), in.ProductID)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(wishlistEntry.One(*w))
}

// Remove accepts the product id in the body or as ?productId=.
func (wc *WishlistController) Remove(c *ctx.Context) {
	pid, ok := c.QueryUint("productId")
	if !ok {
		var in wishlistInput
		if c.R.ContentLength != 0 && !c.BindJSONWith(&in, http.StatusBadRequest) {
			return
		}
		pid = in.ProductID
	}
	removed, err := wc.service.Remove(c.Context(), c.UserID(), pid)
	if err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusOK, "Retiré de la liste de souhaits", map[string]bool{"removed": removed})
}
