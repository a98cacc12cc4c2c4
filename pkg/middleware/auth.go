package middleware

import (
	"net/http"

	"github.com/diamantrouge/maison/pkg/auth"
	"github.com/diamantrouge/maison/pkg/logger"
	"github.com/diamantrouge/maison/pkg/response"
	"github.com/diamantrouge/maison/pkg/session"
)

// Auth resolves the session token (Bearer header or session-token cookie),
// checks that its session has not been revoked and puts the claims on the
// request context. Anything else is answered with 401.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := resolve(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "Non authentifié")
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
	})
}

// OptionalAuth attaches claims when a valid session is present and lets
// guests through otherwise.
func OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := resolve(r); ok {
			r = r.WithContext(auth.WithClaims(r.Context(), claims))
		}
		next.ServeHTTP(w, r)
	})
}

func resolve(r *http.Request) (*auth.Claims, bool) {
	token := session.TokenFromRequest(r)
	if token == "" {
		return nil, false
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		logger.WithCtx(r.Context()).Debug("auth: invalid token", "error", err)
		return nil, false
	}

	if !session.Active(r.Context(), claims.ID, claims.UserID) {
		return nil, false
	}
	return claims, true
}
