package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/diamantrouge/maison/pkg/router"
)

func tag(v string) router.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Trail", v)
			next.ServeHTTP(w, r)
		})
	}
}

func TestGroupsStackMiddleware(t *testing.T) {
	r := router.New()
	admin := r.Group("/api/").Group("admin", tag("auth"))
	admin.Put("/orders/{id}/status", "admin.orders.status", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, tag("nostore"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/admin/orders/7/status", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"auth", "nostore"}, rec.Header().Values("X-Trail"))
}

func TestFallbacksUseEnvelope(t *testing.T) {
	r := router.New()
	r.Get("/healthz", "health", func(w http.ResponseWriter, _ *http.Request) {})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status":404,"message":"Ressource introuvable"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRoutesSorted(t *testing.T) {
	r := router.New()
	api := r.Group("/api")
	api.Post("/cart", "cart.add", func(http.ResponseWriter, *http.Request) {})
	api.Get("/cart", "cart.index", func(http.ResponseWriter, *http.Request) {})
	api.Group("").Delete("/", "root", func(http.ResponseWriter, *http.Request) {})

	assert.Equal(t, []router.Route{
		{Method: http.MethodDelete, Path: "/api", Name: "root"},
		{Method: http.MethodGet, Path: "/api/cart", Name: "cart.index"},
		{Method: http.MethodPost, Path: "/api/cart", Name: "cart.add"},
	}, r.Routes())
}
