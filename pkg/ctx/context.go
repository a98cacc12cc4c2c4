// Package ctx is the request context every controller receives: path and
// query helpers, JSON binding, the caller's claims and the response
// envelope.
//
//	func (pc *CatalogController) Show(c *ctx.Context) {
//	    id, ok := c.ParamUint("id")
//	    if !ok {
//	        c.Error(http.StatusBadRequest, "Identifiant invalide")
//	        return
//	    }
//	    ...
//	    c.Success(product)
//	}
//
//	api.Get("/products/{id}", "products.show", ctx.Wrap(pc.Show))
package ctx

import (
	"context"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/diamantrouge/maison/pkg/auth"
	"github.com/diamantrouge/maison/pkg/bind"
	"github.com/diamantrouge/maison/pkg/orm"
	"github.com/diamantrouge/maison/pkg/response"
)

type HandlerFunc func(c *Context)

// Wrap adapts a HandlerFunc for the router.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h(&Context{W: w, R: r})
	}
}

type Context struct {
	W http.ResponseWriter
	R *http.Request
}

func (c *Context) Context() context.Context { return c.R.Context() }

// ─── Request ──────────────────────────────────────────────────────────────────

// ParamUint reads a positive numeric path parameter such as {id}.
func (c *Context) ParamUint(key string) (uint, bool) {
	return positive(chi.URLParam(c.R, key))
}

func (c *Context) Query(key string) string { return c.R.URL.Query().Get(key) }

// QueryInt returns def when key is absent and false when it is present but
// not an integer.
func (c *Context) QueryInt(key string, def int) (int, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def, false
	}
	return n, true
}

// QueryUint reads a positive id such as ?id=12 on the cart routes.
func (c *Context) QueryUint(key string) (uint, bool) { return positive(c.Query(key)) }

func positive(raw string) (uint, bool) {
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// ClientIP prefers the first X-Forwarded-For hop, then X-Real-Ip, then the
// socket peer.
func (c *Context) ClientIP() string {
	if fwd := c.R.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if ip := c.R.Header.Get("X-Real-Ip"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(c.R.RemoteAddr)
	if err != nil {
		return c.R.RemoteAddr
	}
	return host
}

// ─── Caller ───────────────────────────────────────────────────────────────────

func (c *Context) Claims() (*auth.Claims, bool) { return auth.FromContext(c.R.Context()) }

// UserID is 0 for guests.
func (c *Context) UserID() uint {
	if cl, ok := c.Claims(); ok {
		return cl.UserID
	}
	return 0
}

func (c *Context) IsAdmin() bool {
	cl, ok := c.Claims()
	return ok && cl.IsAdmin()
}

// ─── Binding ──────────────────────────────────────────────────────────────────

// BindJSON decodes and validates the body into dest. A malformed body is
// answered 400 and failed rules 422; false means the response is written.
func (c *Context) BindJSON(dest any) bool {
	return c.BindJSONWith(dest, http.StatusUnprocessableEntity)
}

// BindJSONWith answers failed rules with status instead of 422, for routes
// whose contract is a 400 on a missing field.
func (c *Context) BindJSONWith(dest any, status int) bool {
	errs, err := bind.JSON(c.R, dest)
	return c.bound(errs, err, status)
}

// BindQuery fills a `query`-tagged struct. Bad or failing parameters are a
// 400.
func (c *Context) BindQuery(dest any) bool {
	errs, err := bind.Query(c.R, dest)
	return c.bound(errs, err, http.StatusBadRequest)
}

func (c *Context) bound(errs map[string]string, err error, status int) bool {
	switch {
	case err != nil:
		c.Error(http.StatusBadRequest, err.Error())
	case len(errs) > 0:
		response.Write(c.W, status, response.Envelope{Status: status, Message: firstError(errs), Errors: errs})
	default:
		return true
	}
	return false
}

// firstError is the message of the alphabetically first failing field, so
// the envelope message is stable across runs.
func firstError(errs map[string]string) string {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return errs[keys[0]]
}

// ─── Response ─────────────────────────────────────────────────────────────────

func (c *Context) SetHeader(key, value string) { c.W.Header().Set(key, value) }

func (c *Context) Success(data any) { c.Message(http.StatusOK, "", data) }

func (c *Context) Created(data any) { c.Message(http.StatusCreated, "", data) }

// Message answers status with a human-readable message and optional data.
func (c *Context) Message(status int, message string, data any) {
	response.Write(c.W, status, response.Envelope{Status: status, Message: message, Data: data})
}

func (c *Context) Paginated(items any, p orm.Pagination) { response.Paginated(c.W, items, p) }

func (c *Context) Error(status int, message string) { response.Error(c.W, status, message) }

func (c *Context) Unauthorized(message string) { c.Error(http.StatusUnauthorized, message) }

// NotFound answers 404 with message, or a generic one when it is empty.
func (c *Context) NotFound(message string) {
	if message == "" {
		message = "Ressource introuvable"
	}
	c.Error(http.StatusNotFound, message)
}

// Data writes raw bytes such as an optimized image or an xlsx export.
func (c *Context) Data(status int, contentType string, b []byte) {
	h := c.W.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.Itoa(len(b)))
	c.W.WriteHeader(status)
	_, _ = c.W.Write(b)
}
