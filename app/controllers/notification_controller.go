package controllers

import (
	"net/http"

	"github.com/diamantrouge/maison/app/services"
	"github.com/diamantrouge/maison/pkg/ctx"
	"github.com/diamantrouge/maison/pkg/ws"
)

type NotificationController struct {
	service *services.NotificationService
	hub     *ws.Hub
}

func NewNotificationController(service *services.NotificationService, hub *ws.Hub) *NotificationController {
	return &NotificationController{service: service, hub: hub}
}

func (nc *NotificationController) Index(c *ctx.Context) {
	items, err := nc.service.List(c.Context(), c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(items)
}

func (nc *NotificationController) MarkRead(c *ctx.Context) {
	n, err := nc.service.MarkAllRead(c.Context(), c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusOK, "Notifications marquées comme lues", map[string]int64{"count": n})
}

func (nc *NotificationController) Clear(c *ctx.Context) {
	n, err := nc.service.DeleteAll(c.Context(), c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusOK, "Notifications supprimées", map[string]int64{"count": n})
}

// Socket upgrades the request; new notifications for the caller are then
// pushed on it.
func (nc *NotificationController) Socket(c *ctx.Context) {
	ws.Upgrade(c.W, c.R, nc.hub, c.UserID())
}

// Send delivers an alert to the user named by {id}.
func (nc *NotificationController) Send(c *ctx.Context) {
	uid, ok := id(c)
	if !ok {
		return
	}
	var in services.Alert
	if !c.BindJSONWith(&in, http.StatusBadRequest) {
		return
	}
	if err := nc.service.Notify(c.Context(), uid, &in); err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusCreated, "Notification envoyée", nil)
}
