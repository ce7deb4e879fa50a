package restapi

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"paradas.buscoruna.org/internal/models"
	"paradas.buscoruna.org/internal/utils"
)

// RateLimitMiddleware provides per-client rate limiting keyed by client IP.
type RateLimitMiddleware struct {
	limiters    map[string]*clientLimiter
	mu          sync.RWMutex
	rateLimit   rate.Limit
	burstSize   int
	disabled    bool
	idleTTL     time.Duration
	cleanupTick *time.Ticker
	done        chan struct{}
	stopOnce    sync.Once
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimitMiddleware creates a rate limiter allowing ratePerInterval
// requests per interval for each client, with a burst of the same size.
// A non-positive rate disables limiting.
func NewRateLimitMiddleware(ratePerInterval int, interval time.Duration) *RateLimitMiddleware {
	rl := &RateLimitMiddleware{
		limiters: make(map[string]*clientLimiter),
		idleTTL:  10 * time.Minute,
		done:     make(chan struct{}),
	}

	if ratePerInterval <= 0 {
		rl.disabled = true
		rl.rateLimit = rate.Inf
		return rl
	}

	rl.rateLimit = rate.Every(interval / time.Duration(ratePerInterval))
	rl.burstSize = ratePerInterval
	rl.cleanupTick = time.NewTicker(5 * time.Minute)
	go rl.cleanup()

	return rl
}

// getLimiter gets or creates a rate limiter for the given client
func (rl *RateLimitMiddleware) getLimiter(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.RLock()
	entry, exists := rl.limiters[key]
	rl.mu.RUnlock()

	if exists {
		rl.mu.Lock()
		entry.lastSeen = now
		rl.mu.Unlock()
		return entry.limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Double-check after acquiring write lock
	if entry, exists := rl.limiters[key]; exists {
		entry.lastSeen = now
		return entry.limiter
	}

	entry = &clientLimiter{
		limiter:  rate.NewLimiter(rl.rateLimit, rl.burstSize),
		lastSeen: now,
	}
	rl.limiters[key] = entry
	return entry.limiter
}

// Handler wraps next with rate limiting
func (rl *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	if rl.disabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.getLimiter(utils.ClientIP(r)).Allow() {
			rl.sendRateLimitExceeded(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// sendRateLimitExceeded sends a 429 Too Many Requests response
func (rl *RateLimitMiddleware) sendRateLimitExceeded(w http.ResponseWriter) {
	retryAfter := time.Duration(float64(time.Second) / float64(rl.rateLimit))
	seconds := int(retryAfter.Round(time.Second).Seconds())
	if seconds < 1 {
		seconds = 1
	}

	setJSONResponseType(w)
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.burstSize))
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.WriteHeader(http.StatusTooManyRequests)

	_ = writeJSONBody(w, models.ErrorResponse{Detail: detailRateLimited, Code: http.StatusTooManyRequests})
}

// cleanup periodically removes limiters of clients that have gone quiet
func (rl *RateLimitMiddleware) cleanup() {
	for {
		select {
		case <-rl.done:
			return
		case now := <-rl.cleanupTick.C:
			rl.mu.Lock()
			for key, entry := range rl.limiters {
				if now.Sub(entry.lastSeen) > rl.idleTTL {
					delete(rl.limiters, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Stop stops the cleanup goroutine
func (rl *RateLimitMiddleware) Stop() {
	rl.stopOnce.Do(func() {
		if rl.cleanupTick != nil {
			rl.cleanupTick.Stop()
		}
		close(rl.done)
	})
}
