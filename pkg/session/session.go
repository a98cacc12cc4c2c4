// Package session tracks server-side login sessions backed by Redis (or
// memory when Redis is down) and moves the session token in and out of the
// `session-token` cookie.
//
// Login:
//
//	id, _ := session.Start(ctx, user.ID, ttl)
//	token, _ := auth.GenerateToken(user.ID, user.Role, user.Email, id, ttl)
//	session.SetCookie(w, token, ttl)
//
// Logout:
//
//	session.Destroy(ctx, claims.ID)
//	session.ClearCookie(w)
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/diamantrouge/maison/config"
	"github.com/diamantrouge/maison/pkg/cache"
)

// CookieName is the cookie carrying the signed session token.
const CookieName = "session-token"

type record struct {
	UserID    uint      `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

var (
	memMu sync.Mutex
	mem   = map[string]record{}
)

// newID generates a cryptographically random 32-byte hex session ID.
func newID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func redisKey(id string) string { return "diamant:session:" + id }

// userKey is the Redis set of a user's session ids, used by DestroyUser.
func userKey(userID uint) string { return fmt.Sprintf("diamant:user-sessions:%d", userID) }

// Start registers a new session for userID and returns its id.
func Start(ctx context.Context, userID uint, ttl time.Duration) (string, error) {
	id, err := newID()
	if err != nil {
		return "", fmt.Errorf("session: new id: %w", err)
	}
	rec := record{UserID: userID, ExpiresAt: time.Now().Add(ttl)}

	if cache.Available() {
		if err := cache.Set(ctx, redisKey(id), rec, ttl); err != nil {
			return "", fmt.Errorf("session: redis save: %w", err)
		}
		pipe := cache.RDB.TxPipeline()
		pipe.SAdd(ctx, userKey(userID), id)
		pipe.Expire(ctx, userKey(userID), ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			return "", fmt.Errorf("session: redis index: %w", err)
		}
		return id, nil
	}

	memMu.Lock()
	mem[id] = rec
	memMu.Unlock()
	return id, nil
}

// Active reports whether the session id is still valid for userID.
func Active(ctx context.Context, id string, userID uint) bool {
	if id == "" {
		return false
	}
	var rec record
	if cache.Available() {
		if !cache.Get(ctx, redisKey(id), &rec) {
			return false
		}
	} else {
		memMu.Lock()
		r, ok := mem[id]
		memMu.Unlock()
		if !ok {
			return false
		}
		rec = r
	}
	return rec.UserID == userID && time.Now().Before(rec.ExpiresAt)
}

// Destroy revokes a session (logout).
func Destroy(ctx context.Context, id string) error {
	memMu.Lock()
	delete(mem, id)
	memMu.Unlock()
	return cache.Del(ctx, redisKey(id))
}

// DestroyUser revokes every session of userID, for deleted accounts and
// role changes, and returns how many it found.
func DestroyUser(ctx context.Context, userID uint) (int, error) {
	memMu.Lock()
	n := 0
	for id, rec := range mem {
		if rec.UserID == userID {
			delete(mem, id)
			n++
		}
	}
	memMu.Unlock()
	if !cache.Available() {
		return n, nil
	}

	ids, err := cache.RDB.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		return n, fmt.Errorf("session: list user sessions: %w", err)
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, redisKey(id))
	}
	keys = append(keys, userKey(userID))
	if err := cache.Del(ctx, keys...); err != nil {
		return n, fmt.Errorf("session: revoke user sessions: %w", err)
	}
	return n + len(ids), nil
}

// Sweep drops expired in-memory sessions. Redis expires its own keys.
func Sweep() int {
	now := time.Now()
	memMu.Lock()
	defer memMu.Unlock()
	n := 0
	for id, rec := range mem {
		if now.After(rec.ExpiresAt) {
			delete(mem, id)
			n++
		}
	}
	return n
}

// SetCookie writes the signed token into the session cookie.
func SetCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   config.AppEnv() == "production",
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// TokenFromRequest returns the bearer token from the Authorization header,
// falling back to the session cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}
