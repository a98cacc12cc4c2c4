// Package kernel assembles the HTTP handler: global middleware first, then
// the application's route table.
package kernel

import (
	"net/http"
	"time"

	"github.com/diamantrouge/maison/app/routes"
	"github.com/diamantrouge/maison/config"
	"github.com/diamantrouge/maison/pkg/metrics"
	"github.com/diamantrouge/maison/pkg/middleware"
	"github.com/diamantrouge/maison/pkg/reqid"
	"github.com/diamantrouge/maison/pkg/router"
)

type HTTPKernel struct {
	router *router.Router
}

func NewHTTPKernel(c *routes.Controllers) *HTTPKernel {
	r := router.New()

	// Outermost first: metrics see the full latency, recovery guards
	// everything below it, the request id exists before anything logs.
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(config.RateLimit(), time.Minute))

	routes.RegisterAPI(r, c)
	return &HTTPKernel{router: r}
}

func (k *HTTPKernel) Handler() http.Handler { return k.router.Handler() }

func (k *HTTPKernel) Routes() []router.Route { return k.router.Routes() }
