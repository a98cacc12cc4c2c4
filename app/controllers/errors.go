// Package controllers turns HTTP requests into service calls and service
// results into the JSON envelope.
package controllers

import (
	"errors"
	"net/http"

	"github.com/diamantrouge/maison/app/services"
	"github.com/diamantrouge/maison/pkg/ctx"
	"github.com/diamantrouge/maison/pkg/logger"
)

var statusOf = []struct {
	kind   error
	status int
}{
	{services.ErrInvalidInput, http.StatusBadRequest},
	{services.ErrInvalidCredentials, http.StatusUnauthorized},
	{services.ErrForbidden, http.StatusForbidden},
	{services.ErrNotFound, http.StatusNotFound},
	{services.ErrConflict, http.StatusConflict},
	{services.ErrUpstream, http.StatusBadGateway},
}

// fail answers err with the status of its kind. Unknown errors are logged
// and hidden behind a 500.
func fail(c *ctx.Context, err error) {
	var se *services.Error
	if errors.As(err, &se) {
		for _, m := range statusOf {
			if errors.Is(se, m.kind) {
				c.Error(m.status, se.Msg)
				return
			}
		}
	}
	if errors.Is(err, services.ErrInvalidCredentials) {
		c.Unauthorized("Email ou mot de passe incorrect")
		return
	}
	logger.WithCtx(c.Context()).Error("request failed", "path", c.R.URL.Path, "error", err)
	c.Error(http.StatusInternalServerError, "Une erreur interne est survenue")
}

// id reads the {id} path parameter, answering 400 when it is not a
// positive integer.
func id(c *ctx.Context) (uint, bool) {
	n, ok := c.ParamUint("id")
	if !ok {
		c.Error(http.StatusBadRequest, "Identifiant invalide")
	}
	return n, ok
}
