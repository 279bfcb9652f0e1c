package middleware

import (
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/harukim/task-tracker-api/internal/errors"
	"golang.org/x/time/rate"
)

// KeyedLimiter rate limits independently per key (client IP or principal id).
// Idle keys are pruned so the map does not grow without bound.
type KeyedLimiter struct {
	mu        sync.Mutex
	entries   map[string]*limiterEntry
	limit     rate.Limit
	burst     int
	lastPrune time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const limiterIdleTTL = 10 * time.Minute

// NewKeyedLimiter creates a limiter allowing perMinute requests per key.
func NewKeyedLimiter(perMinute int) *KeyedLimiter {
	return &KeyedLimiter{
		entries:   make(map[string]*limiterEntry),
		limit:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:     perMinute,
		lastPrune: time.Now(),
	}
}

// Allow reports whether a request for key is admitted. On rejection it
// returns how long the caller must wait before the next request would pass.
func (k *KeyedLimiter) Allow(key string) (bool, time.Duration) {
	k.mu.Lock()
	now := time.Now()
	if now.Sub(k.lastPrune) > limiterIdleTTL {
		for id, entry := range k.entries {
			if now.Sub(entry.lastSeen) > limiterIdleTTL {
				delete(k.entries, id)
			}
		}
		k.lastPrune = now
	}

	entry, exists := k.entries[key]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.entries[key] = entry
	}
	entry.lastSeen = now
	k.mu.Unlock()

	reservation := entry.limiter.Reserve()
	if delay := reservation.Delay(); delay > 0 {
		reservation.Cancel()
		return false, delay
	}
	return true, 0
}

// ThrottleLogin rejects over-limit login attempts by client IP before the
// core is invoked. The response reports the remaining wait time.
func ThrottleLogin(limiter *KeyedLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ok, wait := limiter.Allow(c.ClientIP()); !ok {
			seconds := retryAfterSeconds(wait)
			apierrors.TooManyRequests(c,
				fmt.Sprintf("Too many login attempts. Try again in %d seconds.", seconds), seconds)
			c.Abort()
			return
		}
		c.Next()
	}
}

// ThrottleAPI rejects over-limit requests keyed by principal id when
// authenticated, else by client IP. Must run after RequireAuth on
// authenticated routes.
func ThrottleAPI(limiter *KeyedLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if principal, ok := GetPrincipal(c); ok {
			key = "user:" + strconv.FormatUint(principal.ID(), 10)
		}

		if ok, wait := limiter.Allow(key); !ok {
			seconds := retryAfterSeconds(wait)
			apierrors.TooManyRequests(c, "Rate limit exceeded.", seconds)
			c.Abort()
			return
		}
		c.Next()
	}
}

func retryAfterSeconds(wait time.Duration) int {
	seconds := int(math.Ceil(wait.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}
