// Package middleware provides the HTTP middleware stack of the storefront API.
package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/diamantrouge/maison/pkg/cache"
	"github.com/diamantrouge/maison/pkg/logger"
	"github.com/diamantrouge/maison/pkg/response"
)

// RateLimit allows each client IP max requests per fixed window. Counts
// live in Redis when it is connected so every replica shares them, and in
// process memory otherwise or while Redis is failing.
//
//	r.Use(middleware.RateLimit(config.RateLimit(), time.Minute))
func RateLimit(max int, window time.Duration) func(http.Handler) http.Handler {
	local := &windows{span: window, hits: map[string]*counter{}}
	limit := strconv.Itoa(max)
	retry := strconv.Itoa(int(window.Seconds()))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			n, err := redisHit(r.Context(), ip, window)
			if err != nil {
				n = local.hit(ip, time.Now())
			}

			w.Header().Set("X-RateLimit-Limit", limit)
			if n > int64(max) {
				w.Header().Set("Retry-After", retry)
				response.TooManyRequests(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

var errNoRedis = errors.New("rate: redis not configured")

// redisHit bumps the shared counter for ip in the current window slot.
func redisHit(ctx context.Context, ip string, window time.Duration) (int64, error) {
	if !cache.Available() {
		return 0, errNoRedis
	}
	key := "diamant:rate:" + ip + ":" + strconv.FormatInt(time.Now().UnixNano()/int64(window), 10)
	pipe := cache.RDB.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.WithCtx(ctx).Warn("rate: redis unavailable, counting locally", "error", err)
		return 0, err
	}
	return incr.Val(), nil
}

type counter struct {
	n     int64
	until time.Time
}

// windows is the in-process fallback. Expired counters are dropped on the
// first hit of each new window instead of by a background sweeper.
type windows struct {
	span time.Duration

	mu        sync.Mutex
	hits      map[string]*counter
	nextSweep time.Time
}

func (ws *windows) hit(ip string, now time.Time) int64 {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if now.After(ws.nextSweep) {
		for k, c := range ws.hits {
			if now.After(c.until) {
				delete(ws.hits, k)
			}
		}
		ws.nextSweep = now.Add(ws.span)
	}

	c, ok := ws.hits[ip]
	if !ok || now.After(c.until) {
		c = &counter{until: now.Add(ws.span)}
		ws.hits[ip] = c
	}
	c.n++
	return c.n
}

// clientIP is the first X-Forwarded-For hop, else the socket peer.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
