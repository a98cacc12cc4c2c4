// Package router wraps chi with named routes and prefix groups that carry
// their own middleware stack.
//
//	r := router.New()
//	api := r.Group("/api")
//	api.Get("/products/{id}", "products.show", ctx.Wrap(pc.Show))
//
//	admin := api.Group("/admin", middleware.Auth, rbac.Admin)
//	admin.Put("/orders/{id}/status", "admin.orders.status", ctx.Wrap(oc.UpdateStatus))
package router

import (
	"cmp"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/diamantrouge/maison/pkg/response"
)

type Middleware func(http.Handler) http.Handler

// Route describes one registered endpoint (used by `route:list`).
type Route struct {
	Method string
	Path   string
	Name   string
}

// Router is the chi mux and the "/" group routes hang off.
type Router struct {
	top *Group
	mux chi.Router

	mu     sync.Mutex
	routes []Route
}

// Group registers routes under a prefix with its middleware applied first.
type Group struct {
	root   *Router
	prefix string
	stack  []Middleware
}

func New() *Router {
	mux := chi.NewRouter()
	mux.NotFound(func(w http.ResponseWriter, _ *http.Request) { response.NotFound(w) })
	mux.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Méthode non autorisée")
	})
	r := &Router{mux: mux}
	r.top = &Group{root: r, prefix: "/"}
	return r
}

func (r *Router) Handler() http.Handler { return r.mux }

// Use appends global middleware. Call it before adding routes; chi panics
// otherwise.
func (r *Router) Use(mw ...Middleware) {
	for _, m := range mw {
		r.mux.Use(m)
	}
}

func (r *Router) Group(prefix string, mw ...Middleware) *Group { return r.top.Group(prefix, mw...) }

func (r *Router) Get(path, name string, h http.HandlerFunc, mw ...Middleware) {
	r.top.Get(path, name, h, mw...)
}

func (r *Router) Handle(path, name string, h http.Handler, mw ...Middleware) {
	r.top.Handle(path, name, h, mw...)
}

// Routes lists every registered route by path, then method.
func (r *Router) Routes() []Route {
	r.mu.Lock()
	out := slices.Clone(r.routes)
	r.mu.Unlock()
	slices.SortFunc(out, func(a, b Route) int {
		return cmp.Or(strings.Compare(a.Path, b.Path), strings.Compare(a.Method, b.Method))
	})
	return out
}

// Group nests a prefix; the parent's middleware runs before mw.
func (g *Group) Group(prefix string, mw ...Middleware) *Group {
	return &Group{root: g.root, prefix: join(g.prefix, prefix), stack: slices.Concat(g.stack, mw)}
}

func (g *Group) Get(path, name string, h http.HandlerFunc, mw ...Middleware) {
	g.add(http.MethodGet, path, name, h, mw)
}

func (g *Group) Post(path, name string, h http.HandlerFunc, mw ...Middleware) {
	g.add(http.MethodPost, path, name, h, mw)
}

func (g *Group) Put(path, name string, h http.HandlerFunc, mw ...Middleware) {
	g.add(http.MethodPut, path, name, h, mw)
}

func (g *Group) Delete(path, name string, h http.HandlerFunc, mw ...Middleware) {
	g.add(http.MethodDelete, path, name, h, mw)
}

// Handle mounts a plain http.Handler for GET, e.g. /metrics.
func (g *Group) Handle(path, name string, h http.Handler, mw ...Middleware) {
	g.add(http.MethodGet, path, name, h, mw)
}

func (g *Group) add(method, path, name string, h http.Handler, mw []Middleware) {
	full := join(g.prefix, path)
	stack := slices.Concat(g.stack, mw)
	for i := len(stack) - 1; i >= 0; i-- {
		h = stack[i](h)
	}
	g.root.mux.Method(method, full, h)

	g.root.mu.Lock()
	g.root.routes = append(g.root.routes, Route{Method: method, Path: full, Name: name})
	g.root.mu.Unlock()
}

// join glues path segments with single slashes; the empty join is "/".
func join(parts ...string) string {
	var segs []string
	for _, p := range parts {
		if p = strings.Trim(p, "/"); p != "" {
			segs = append(segs, p)
		}
	}
	return "/" + strings.Join(segs, "/")
}
