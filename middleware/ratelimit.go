package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// KeyFunc picks the bucket a request is charged to.
type KeyFunc func(c *gin.Context) string

// ByIP charges requests to the client address.
func ByIP(c *gin.Context) string { return c.ClientIP() }

// ByAccount charges authenticated requests to the account and falls back to
// the client address. It must run after Auth.
func ByAccount(c *gin.Context) string {
	if id := GetAccountID(c); id != 0 {
		return "acct:" + strconv.FormatInt(id, 10)
	}
	return c.ClientIP()
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter is a set of token buckets keyed by KeyFunc.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	r       rate.Limit
	b       int
	key     KeyFunc
	now     func() time.Time
}

// NewLimiter allows r requests per second with burst b per key. Idle
// buckets are swept every minute until ctx is done.
func NewLimiter(ctx context.Context, r rate.Limit, b int, key KeyFunc) *Limiter {
	l := &Limiter{buckets: map[string]*bucket{}, r: r, b: b, key: key, now: time.Now}
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.sweep(10 * time.Minute)
			}
		}
	}()
	return l
}

func (l *Limiter) allow(key string) bool {
	l.mu.Lock()
	bk, ok := l.buckets[key]
	if !ok {
		bk = &bucket{limiter: rate.NewLimiter(l.r, l.b)}
		l.buckets[key] = bk
	}
	bk.lastSeen = l.now()
	l.mu.Unlock()
	return bk.limiter.Allow()
}

func (l *Limiter) sweep(idle time.Duration) int {
	cutoff := l.now().Add(-idle)
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, bk := range l.buckets {
		if bk.lastSeen.Before(cutoff) {
			delete(l.buckets, k)
			n++
		}
	}
	return n
}

// Handler rejects requests over the limit with 429.
func (l *Limiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(l.key(c)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// RateLimit is a per-IP limiter living as long as ctx.
func RateLimit(ctx context.Context, r rate.Limit, b int) gin.HandlerFunc {
	return NewLimiter(ctx, r, b, ByIP).Handler()
}
