package middleware

import (
	"net/http"
	"sync"
	"time"
)

// RateLimiter throttles clinic API clients per IP with a token bucket, so a
// misbehaving integration cannot starve the record endpoints for everyone.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*tokenBucket
	rate    float64 // refill, tokens per second
	burst   int
}

type tokenBucket struct {
	tokens float64
	seen   time.Time
}

// NewRateLimiter creates a limiter refilling rate tokens/sec with the given
// burst per client IP.
func NewRateLimiter(rate float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*tokenBucket),
		rate:    rate,
		burst:   burst,
	}
	go rl.evictIdle()
	return rl
}

// Allow reports whether the client identified by ip may proceed.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.clients[ip]
	if !ok {
		b = &tokenBucket{tokens: float64(rl.burst), seen: now}
		rl.clients[ip] = b
	}

	b.tokens += now.Sub(b.seen).Seconds() * rl.rate
	if b.tokens > float64(rl.burst) {
		b.tokens = float64(rl.burst)
	}
	b.seen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// evictIdle drops buckets for clients not seen in a while so the map does
// not grow with every IP that ever called the API.
func (rl *RateLimiter) evictIdle() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		rl.mu.Lock()
		cutoff := time.Now().Add(-10 * time.Minute)
		for ip, b := range rl.clients {
			if b.seen.Before(cutoff) {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimit rejects requests beyond the configured per-IP rate with 429.
func RateLimit(rate float64, burst int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(rate, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			// RealIP middleware runs earlier in the chain and sets this.
			if xri := r.Header.Get("X-Real-Ip"); xri != "" {
				ip = xri
			}
			if !limiter.Allow(ip) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
