package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/diamantrouge/maison/app/services"
	"github.com/diamantrouge/maison/pkg/ctx"
)

type ExportController struct {
	service *services.ExportService
	now     func() time.Time
}

func NewExportController(service *services.ExportService) *ExportController {
	return &ExportController{service: service, now: time.Now}
}

func (ec *ExportController) Orders(c *ctx.Context) {
	data, err := ec.service.Orders(c.Context(), c.Query("status"))
	if err != nil {
		fail(c, err)
		return
	}
	ec.attach(c, "commandes", data)
}

func (ec *ExportController) Products(c *ctx.Context) {
	data, err := ec.service.Products(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ec.attach(c, "produits", data)
}

func (ec *ExportController) attach(c *ctx.Context, name string, data []byte) {
	file := fmt.Sprintf("%s-%s.xlsx", name, ec.now().Format("20060102"))
	c.SetHeader("Content-Disposition", `attachment; filename="`+file+`"`)
	c.Data(http.StatusOK, services.XLSXContentType, data)
}
