// internal/app/system/ratelimit/ratelimit.go

// Package ratelimit is the in-process throttle for abuse-prone endpoints:
// the scan endpoint keys per user, the login endpoint per client IP and
// per account. The windows live in memory; limits here are hygiene for a
// single process, not shared state.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/attendease/attendease/internal/app/system/normalize"
)

// Limiter counts requests per key over a sliding window. Safe for
// concurrent use.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int
	duration time.Duration
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a limiter allowing limit requests per key per duration.
// A cleanup goroutine drops stale windows so idle keys do not accumulate.
func New(limit int, duration time.Duration) *Limiter {
	l := &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
	}
	go l.cleanupLoop(duration * 2)
	return l
}

// Allow records one request for key and reports whether it fits the
// current window.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.windows[key]
	if !ok || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Reset forgets the key's window. Called after a successful login so a
// user who finally got their password right is not still throttled.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

func (l *Limiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		now := time.Now()
		for key, w := range l.windows {
			if now.After(w.expiresAt) {
				delete(l.windows, key)
			}
		}
		l.mu.Unlock()
	}
}

// ClientIP extracts the requester's IP, preferring the proxy headers the
// deployment's reverse proxy sets, then RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// First entry is the originating client.
		if ip := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0]); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter throttles sign-in attempts on two axes: per IP against
// spray attacks across accounts, per email against a targeted account.
type LoginLimiter struct {
	byIP    *Limiter
	byEmail *Limiter
}

// NewLoginLimiter returns the login throttle: 10 attempts per IP per
// minute, 5 per account per five minutes.
func NewLoginLimiter() *LoginLimiter {
	return &LoginLimiter{
		byIP:    New(10, time.Minute),
		byEmail: New(5, 5*time.Minute),
	}
}

// Check records one attempt and reports whether it may proceed, with a
// client-safe message when it may not.
func (ll *LoginLimiter) Check(r *http.Request, email string) (bool, string) {
	if !ll.byIP.Allow(ClientIP(r)) {
		return false, "Too many sign-in attempts; wait a minute and try again."
	}
	if email != "" && !ll.byEmail.Allow(normalize.Email(email)) {
		return false, "Too many sign-in attempts for this account; wait a few minutes."
	}
	return true, ""
}

// ResetEmail clears the account window after a successful sign-in.
func (ll *LoginLimiter) ResetEmail(email string) {
	if email != "" {
		ll.byEmail.Reset(normalize.Email(email))
	}
}
