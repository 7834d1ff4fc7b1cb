package server

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiterConfig holds configuration for the rate limiter.
type RateLimiterConfig struct {
	// RequestsPerMinute is the budget of one client per window. Default: 60.
	RequestsPerMinute int
	// Window is the length of a budget window. Default: one minute.
	Window time.Duration
	// CleanupInterval is how often idle clients are forgotten. Default: 5 minutes.
	CleanupInterval time.Duration
}

// DefaultRateLimiterConfig returns the default rate limiter configuration.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerMinute: 60,
		Window:            time.Minute,
		CleanupInterval:   5 * time.Minute,
	}
}

// RateLimiter gives each client IP a fixed budget of requests per window.
// Sweeps are CPU bound, so the budget is per client rather than global.
type RateLimiter struct {
	mu      sync.Mutex
	budgets map[string]*budget
	cfg     RateLimiterConfig
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type budget struct {
	remaining int
	opened    time.Time
}

// NewRateLimiter creates a rate limiter and starts its cleanup goroutine,
// which runs until Stop.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	def := DefaultRateLimiterConfig()
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = def.RequestsPerMinute
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}

	rl := &RateLimiter{
		budgets: make(map[string]*budget),
		cfg:     cfg,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go rl.forgetIdle()
	return rl
}

// Reserve takes one request from the client's budget. When the budget is
// spent it returns false and the time left until the window reopens.
func (rl *RateLimiter) Reserve(client string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.budgets[client]
	if !ok || now.Sub(b.opened) >= rl.cfg.Window {
		rl.budgets[client] = &budget{remaining: rl.cfg.RequestsPerMinute - 1, opened: now}
		return true, 0
	}
	if b.remaining > 0 {
		b.remaining--
		return true, 0
	}
	return false, b.opened.Add(rl.cfg.Window).Sub(now)
}

// Allow reports whether a request from client fits its budget.
func (rl *RateLimiter) Allow(client string) bool {
	ok, _ := rl.Reserve(client)
	return ok
}

func (rl *RateLimiter) forgetIdle() {
	ticker := time.NewTicker(rl.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			cutoff := rl.now().Add(-2 * rl.cfg.Window)
			for client, b := range rl.budgets {
				if b.opened.Before(cutoff) {
					delete(rl.budgets, client)
				}
			}
			rl.mu.Unlock()
		case <-rl.stop:
			return
		}
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// rateLimitMiddleware answers 429 with a Retry-After in whole seconds once
// the client's budget is spent.
func (s *Server) rateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, wait := s.rateLimiter.Reserve(getClientIP(r))
		if !ok {
			secs := max(1, int(math.Ceil(wait.Seconds())))
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			s.writeErrorResponse(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}
		next(w, r)
	}
}

// getClientIP prefers the first X-Forwarded-For entry, then X-Real-IP, then
// the host part of RemoteAddr.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.Trim(r.RemoteAddr, "[]")
	}
	return host
}
