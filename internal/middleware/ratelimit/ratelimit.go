// Package ratelimit throttles requests per client with a token bucket.
package ratelimit

import (
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"fintrack/internal/log"
)

const (
	defaultRPS             = 1.0
	defaultBurst           = 10
	defaultCleanupInterval = 5 * time.Minute
	limiterTTL             = 10 * time.Minute
)

// Limiter keeps one token bucket per client key.
type Limiter struct {
	mu           sync.Mutex
	clients      map[string]*clientEntry
	stopCleanup  chan struct{}
	shutdownOnce sync.Once

	rps             rate.Limit
	burst           int
	cleanupInterval time.Duration
	logger          *log.Logger
}

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Config holds rate limiter configuration
type Config struct {
	RequestsPerSecond float64
	Burst             int
	CleanupInterval   time.Duration
	// Logger defaults to the process logger under the http component.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: defaultRPS,
		Burst:             defaultBurst,
		CleanupInterval:   defaultCleanupInterval,
	}
}

// NewLimiter creates a limiter and starts its cleanup goroutine. Stop must
// be called to release it.
func NewLimiter(config Config) *Limiter {
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = defaultRPS
	}
	if config.Burst <= 0 {
		config.Burst = defaultBurst
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = defaultCleanupInterval
	}
	if config.Logger == nil {
		config.Logger = log.Default(log.ComponentHTTP)
	}

	rl := &Limiter{
		clients:         make(map[string]*clientEntry),
		stopCleanup:     make(chan struct{}),
		rps:             rate.Limit(config.RequestsPerSecond),
		burst:           config.Burst,
		cleanupInterval: config.CleanupInterval,
		logger:          config.Logger,
	}
	go rl.startCleanup()
	return rl
}

// Allow reports whether a request from key may proceed now.
func (rl *Limiter) Allow(key string) bool {
	return rl.entry(key).limiter.Allow()
}

// RetryAfter estimates how long key has to wait for the next token.
func (rl *Limiter) RetryAfter(key string) time.Duration {
	e := rl.entry(key)
	tokens := e.limiter.Tokens()
	if tokens >= 1 {
		return 0
	}
	missing := 1 - tokens
	return time.Duration(math.Ceil(missing/float64(rl.rps))) * time.Second
}

func (rl *Limiter) entry(key string) *clientEntry {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	e, ok := rl.clients[key]
	if !ok {
		e = &clientEntry{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[key] = e
	}
	e.lastSeen = time.Now()
	return e
}

func (rl *Limiter) startCleanup() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep(time.Now())
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *Limiter) sweep(now time.Time) {
	if n := rl.cleanupStaleEntries(now); n > 0 {
		rl.logger.Debug("Cleaned up stale rate limiters", "removed", n, "active", rl.ActiveClients())
	}
}

// cleanupStaleEntries removes clients not seen within limiterTTL of now.
func (rl *Limiter) cleanupStaleEntries(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	cutoff := now.Add(-limiterTTL)
	for key, e := range rl.clients {
		if e.lastSeen.Before(cutoff) {
			delete(rl.clients, key)
			removed++
		}
	}
	return removed
}

// ActiveClients returns the number of currently tracked clients
func (rl *Limiter) ActiveClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Stop gracefully shuts down the rate limiter cleanup goroutine
func (rl *Limiter) Stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// Middleware rejects requests over the limit with 429. Only requests for
// which applies returns true are counted; a nil applies counts every request.
func (rl *Limiter) Middleware(extractKey func(*http.Request) string, applies func(*http.Request) bool, onLimit func(http.ResponseWriter, *http.Request, time.Duration)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if applies != nil && !applies(r) {
				next.ServeHTTP(w, r)
				return
			}

			key := extractKey(r)
			if !rl.Allow(key) {
				retry := rl.RetryAfter(key)
				if retry < time.Second {
					retry = time.Second
				}
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(retry.Seconds())))
				if onLimit != nil {
					onLimit(w, r, retry)
				} else {
					http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WritesOnly counts every method that can change state.
func WritesOnly(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	default:
		return true
	}
}
