package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/diamantrouge/maison/pkg/logger"
	"github.com/diamantrouge/maison/pkg/response"
)

// Recovery turns a handler panic into a logged stack and a 500 envelope.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			logger.WithCtx(r.Context()).Error("http: handler panicked",
				"panic", fmt.Sprint(v),
				"route", r.Method+" "+r.URL.Path,
				"stack", string(debug.Stack()),
			)
			response.Error(w, http.StatusInternalServerError, "Erreur interne du serveur")
		}()
		next.ServeHTTP(w, r)
	})
}

// CacheControl sets a fixed Cache-Control header on every response.
func CacheControl(value string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", value)
			next.ServeHTTP(w, r)
		})
	}
}

// NoStore marks authenticated responses as uncacheable.
func NoStore(next http.Handler) http.Handler {
	return CacheControl("no-store")(next)
}
