// Package rbac provides role-based access control middleware. It must run
// after middleware.Auth so the caller's claims are on the context.
package rbac

import (
	"net/http"

	"github.com/diamantrouge/maison/pkg/auth"
	"github.com/diamantrouge/maison/pkg/response"
)

// HasRole returns middleware that allows access only to users with one of
// the given roles.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.FromContext(r.Context())
			if !ok {
				response.Error(w, http.StatusUnauthorized, "Non authentifié")
				return
			}
			if !allowed[claims.Role] {
				response.Error(w, http.StatusForbidden, "Accès réservé aux administrateurs")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Admin is HasRole(auth.RoleAdmin).
func Admin(next http.Handler) http.Handler {
	return HasRole(auth.RoleAdmin)(next)
}

// Guest answers 409 to callers holding a live session (signup, login). It
// runs after middleware.OptionalAuth; revoked or expired tokens pass.
func Guest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.FromContext(r.Context()); ok {
			response.Error(w, http.StatusConflict, "Déjà connecté")
			return
		}
		next.ServeHTTP(w, r)
	})
}
