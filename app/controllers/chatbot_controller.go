package controllers

import (
	"net/http"

	"github.com/diamantrouge/maison/app/services"
	"github.com/diamantrouge/maison/pkg/ctx"
)

type ChatbotController struct {
	service *services.ChatbotService
}

func NewChatbotController(service *services.ChatbotService) *ChatbotController {
	return &ChatbotController{service: service}
}

func (cc *ChatbotController) Ask(c *ctx.Context) {
	var in struct {
		Prompt string `json:"prompt" validate:"required,max=2000"`
	}
	if !c.BindJSONWith(&in, http.StatusBadRequest) {
		return
	}
	reply, err := cc.service.Ask(c.Context(), in.Prompt)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(map[string]string{"reply": reply})
}
