package controllers

import (
	"net/http"

	"github.com/diamantrouge/maison/app/services"
	"github.com/diamantrouge/maison/pkg/ctx"
	"github.com/diamantrouge/maison/pkg/sse"
)

type OrderController struct {
	service *services.OrderService
	feed    *sse.Broker
}

func NewOrderController(service *services.OrderService, feed *sse.Broker) *OrderController {
	return &OrderController{service: service, feed: feed}
}

func (oc *OrderController) Place(c *ctx.Context) {
	var in services.PlaceOrderInput
	if !c.BindJSONWith(&in, http.StatusBadRequest) {
		return
	}
	o, err := oc.service.Place(c.Context(), c.UserID(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusCreated, "Commande enregistrée", o)
}

func (oc *OrderController) Mine(c *ctx.Context) {
	orders, err := oc.service.ListForUser(c.Context(), c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(orders)
}

func (oc *OrderController) AdminIndex(c *ctx.Context) {
	orders, err := oc.service.ListAll(c.Context(), c.Query("status"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(orders)
}

func (oc *OrderController) UpdateStatus(c *ctx.Context) {
	oid, ok := id(c)
	if !ok {
		return
	}
	var in struct {
		Status string `json:"status" validate:"required"`
	}
	if !c.BindJSONWith(&in, http.StatusBadRequest) {
		return
	}
	o, err := oc.service.UpdateStatus(c.Context(), oid, in.Status)
	if err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusOK, "Statut de la commande mis à jour", o)
}

// Stream holds the connection open and relays order events to the
// back-office dashboard.
func (oc *OrderController) Stream(c *ctx.Context) {
	oc.feed.Serve(c.W, c.R)
}
