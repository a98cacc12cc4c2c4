package controllers

import (
	"net/http"

	"github.com/diamantrouge/maison/app/services"
	"github.com/diamantrouge/maison/pkg/ctx"
	"github.com/diamantrouge/maison/pkg/imaging"
)

type ImageController struct {
	service *services.ImageService
}

func NewImageController(service *services.ImageService) *ImageController {
	return &ImageController{service: service}
}

func (ic *ImageController) Optimize(c *ctx.Context) {
	w, okW := c.QueryInt("w", imaging.DefaultWidth)
	q, okQ := c.QueryInt("q", imaging.DefaultQuality)
	if !okW || !okQ {
		c.Error(http.StatusBadRequest, "Les paramètres w et q doivent être des entiers")
		return
	}
	res, err := ic.service.Optimize(c.Context(), services.OptimizeRequest{
		URL:     c.Query("url"),
		Width:   w,
		Quality: q,
		Format:  c.Query("f"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.SetHeader("Cache-Control", "public, max-age=31536000, immutable")
	c.SetHeader("Vary", "Accept")
	c.Data(http.StatusOK, res.ContentType, res.Data)
}

func (ic *ImageController) Upload(c *ctx.Context) {
	if err := c.R.ParseMultipartForm(32 << 20); err != nil {
		c.Error(http.StatusBadRequest, "Formulaire multipart invalide")
		return
	}
	urls, err := ic.service.Upload(c.Context(), c.R.MultipartForm.File["images"])
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(map[string][]string{"urls": urls})
}
