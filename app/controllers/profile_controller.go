package controllers

import (
	"net/http"

	"github.com/diamantrouge/maison/app/services"
	"github.com/diamantrouge/maison/pkg/ctx"
)

type ProfileController struct {
	service *services.ProfileService
}

func NewProfileController(service *services.ProfileService) *ProfileController {
	return &ProfileController{service: service}
}

func (pc *ProfileController) Show(c *ctx.Context) {
	u, err := pc.service.Profile(c.Context(), c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(u)
}

func (pc *ProfileController) UpdateAddress(c *ctx.Context) {
	var in services.AddressInput
	if !c.BindJSON(&in) {
		return
	}
	u, err := pc.service.UpdateAddress(c.Context(), c.UserID(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusOK, "Adresse mise à jour", u)
}

func (pc *ProfileController) UpdatePreferences(c *ctx.Context) {
	var in services.PreferencesInput
	if !c.BindJSON(&in) {
		return
	}
	u, err := pc.service.UpdatePreferences(c.Context(), c.UserID(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusOK, "Préférences mises à jour", u)
}

func (pc *ProfileController) UpdateMemberStatus(c *ctx.Context) {
	var in struct {
		TargetUserID uint   `json:"targetUserId" validate:"required"`
		MemberStatus string `json:"memberStatus" validate:"required"`
	}
	if !c.BindJSONWith(&in, http.StatusBadRequest) {
		return
	}
	u, err := pc.service.UpdateMemberStatus(c.Context(), in.TargetUserID, in.MemberStatus)
	if err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusOK, "Statut de membre mis à jour", u)
}
