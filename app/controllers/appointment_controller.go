package controllers

import (
	"net/http"

	"github.com/diamantrouge/maison/app/services"
	"github.com/diamantrouge/maison/pkg/ctx"
)

type AppointmentController struct {
	service *services.AppointmentService
}

func NewAppointmentController(service *services.AppointmentService) *AppointmentController {
	return &AppointmentController{service: service}
}

type booking struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Appointment any    `json:"appointment"`
}

func (ac *AppointmentController) Book(c *ctx.Context) {
	var in services.BookAppointmentInput
	if !c.BindJSONWith(&in, http.StatusBadRequest) {
		return
	}
	a, err := ac.service.Book(c.Context(), c.UserID(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(booking{Success: true, Message: "Votre rendez-vous a été enregistré", Appointment: a})
}

func (ac *AppointmentController) Mine(c *ctx.Context) {
	items, err := ac.service.ListForUser(c.Context(), c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(items)
}

// ─── Back-office ──────────────────────────────────────────────────────────────

func (ac *AppointmentController) AdminIndex(c *ctx.Context) {
	items, err := ac.service.AdminList(c.Context(), services.AdminFilter{
		Status:   c.Query("status"),
		Date:     c.Query("date"),
		Type:     c.Query("type"),
		Location: c.Query("location"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(items)
}

func (ac *AppointmentController) AdminStore(c *ctx.Context) {
	var in services.AdminAppointmentInput
	if !c.BindJSONWith(&in, http.StatusBadRequest) {
		return
	}
	a, err := ac.service.AdminCreate(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusCreated, "Rendez-vous créé", a)
}

func (ac *AppointmentController) AdminShow(c *ctx.Context) {
	aid, ok := id(c)
	if !ok {
		return
	}
	a, err := ac.service.Find(c.Context(), aid)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(a)
}

func (ac *AppointmentController) AdminUpdate(c *ctx.Context) {
	aid, ok := id(c)
	if !ok {
		return
	}
	body := map[string]any{}
	if !c.BindJSONWith(&body, http.StatusBadRequest) {
		return
	}
	a, err := ac.service.Update(c.Context(), aid, body)
	if err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusOK, "Rendez-vous mis à jour", a)
}

func (ac *AppointmentController) AdminDestroy(c *ctx.Context) {
	aid, ok := id(c)
	if !ok {
		return
	}
	if err := ac.service.Delete(c.Context(), aid); err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusOK, "Rendez-vous supprimé", nil)
}
