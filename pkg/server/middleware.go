package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const requestIDKey contextKey = "requestID"

// requestIDFrom returns the request id stored by requestIDMiddleware,
// or "" outside of a request scope.
func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// requestIDMiddleware assigns every request a UUID, exposes it in the
// X-Request-Id response header and stores it in the request context for
// problem documents and logs.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// recoverMiddleware converts handler panics into INTERNAL problems.
//
// Validation runs before the engine is invoked, so anything that panics
// past that point is an unexpected failure by definition.
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("handler panic",
					slog.Any("panic", rec),
					slog.String("path", r.URL.Path),
					slog.String("requestID", requestIDFrom(r.Context())))
				writeProblem(w, r, http.StatusInternalServerError, CodeInternal, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// rateLimiter is a fixed-window per-client-IP request counter.
type rateLimiter struct {
	mu      sync.Mutex
	limit   int // requests per window
	window  time.Duration
	clients map[string]*windowCount
}

type windowCount struct {
	windowStart time.Time
	count       int
}

func newRateLimiter(perMinute int) *rateLimiter {
	return &rateLimiter{
		limit:   perMinute,
		window:  time.Minute,
		clients: make(map[string]*windowCount),
	}
}

// allow reports whether another request from addr fits the current window.
func (rl *rateLimiter) allow(addr string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	wc, ok := rl.clients[addr]
	if !ok || now.Sub(wc.windowStart) >= rl.window {
		// When a new client arrives and the map holds more than 1024
		// entries, entries whose window has expired are dropped, bounding
		// the map size.
		if !ok && len(rl.clients) > 1024 {
			for key, other := range rl.clients {
				if now.Sub(other.windowStart) >= rl.window {
					delete(rl.clients, key)
				}
			}
		}
		rl.clients[addr] = &windowCount{windowStart: now, count: 1}
		return true
	}

	if wc.count >= rl.limit {
		return false
	}
	wc.count++
	return true
}

// middleware rejects over-limit requests with a RATE_LIMITED problem.
func (rl *rateLimiter) middleware(onReject func()) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// RemoteAddr carries an ephemeral port; the window is per host.
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			if !rl.allow(host, time.Now()) {
				onReject()
				writeProblem(w, r, http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
