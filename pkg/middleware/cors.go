package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/diamantrouge/maison/config"
)

type CORSOptions struct {
	AllowedOrigins   []string // exact origins, or "*"
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int // preflight cache, seconds
}

// DefaultCORSOptions reads CORS_ORIGINS (comma separated, "*" by default).
// Credentials stay on for the storefront's session cookie.
func DefaultCORSOptions() CORSOptions {
	var origins []string
	for _, o := range strings.Split(config.Get("CORS_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return CORSOptions{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

// CORS answers preflights with 204 and decorates allowed origins. A "*"
// entry with credentials echoes the caller's origin, since browsers reject
// a literal wildcard there.
func CORS(opts CORSOptions) func(http.Handler) http.Handler {
	wildcard := slices.Contains(opts.AllowedOrigins, "*")
	fixed := http.Header{}
	fixed.Set("Access-Control-Allow-Methods", strings.Join(opts.AllowedMethods, ", "))
	fixed.Set("Access-Control-Allow-Headers", strings.Join(opts.AllowedHeaders, ", "))
	if opts.AllowCredentials {
		fixed.Set("Access-Control-Allow-Credentials", "true")
	}
	if opts.MaxAge > 0 {
		fixed.Set("Access-Control-Max-Age", strconv.Itoa(opts.MaxAge))
	}

	allow := func(origin string) string {
		switch {
		case origin != "" && slices.Contains(opts.AllowedOrigins, origin):
			return origin
		case !wildcard:
			return ""
		case opts.AllowCredentials && origin != "":
			return origin
		}
		return "*"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if o := allow(r.Header.Get("Origin")); o != "" {
				h := w.Header()
				for k, v := range fixed {
					h[k] = v
				}
				h.Set("Access-Control-Allow-Origin", o)
				h.Add("Vary", "Origin")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
