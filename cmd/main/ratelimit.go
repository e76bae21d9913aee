package main

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter applies a per-client token bucket to all page requests,
// keyed by the resolved client IP.
type RateLimiter struct {
	clients map[string]*rateLimitClient
	mu      sync.Mutex
	rate    rate.Limit
	burst   int
	keyFn   func(*http.Request) string
	logger  *slog.Logger
}

type rateLimitClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(cfg *RateLimitConfig, keyFn func(*http.Request) string, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*rateLimitClient),
		rate:    rate.Limit(cfg.RequestsPerSecond),
		burst:   cfg.Burst,
		keyFn:   keyFn,
		logger:  logger,
	}
}

// getLimiter returns the limiter for the given key, creating one if needed.
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	client, exists := rl.clients[key]
	if !exists {
		client = &rateLimitClient{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.clients[key] = client
	}
	client.lastSeen = time.Now()
	return client.limiter
}

// Handler returns the rate limiting middleware handler.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.keyFn(r)

		if !rl.getLimiter(key).Allow() {
			rl.logger.Warn("Rate limit exceeded", "client", key, "path", r.URL.Path)
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Cleanup removes limiters that have been idle longer than maxIdle.
// It is called periodically from the run loop.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	for key, client := range rl.clients {
		if client.lastSeen.Before(cutoff) {
			delete(rl.clients, key)
		}
	}
}
