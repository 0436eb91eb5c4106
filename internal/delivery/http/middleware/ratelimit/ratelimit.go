package http_ratelimit_middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	http_common "github.com/humanbelnik/kinoshelf/internal/delivery/http/common"
	"golang.org/x/time/rate"
)

type bucket struct {
	limiter *rate.Limiter
	seen    time.Time
}

// Limiter keeps one token bucket per key. Idle buckets are dropped by Sweep.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rps     rate.Limit
	burst   int
	now     func() time.Time
	logger  *slog.Logger
}

type Option func(*Limiter)

func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		l.logger = logger
	}
}

func New(rps float64, burst int, opts ...Option) *Limiter {
	l := &Limiter{
		buckets: make(map[string]*bucket),
		rps:     rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[key] = b
	}
	b.seen = now
	l.mu.Unlock()

	return b.limiter.AllowN(now, 1)
}

// Sweep drops buckets idle for longer than ttl. A dropped key starts again
// with a full bucket.
func (l *Limiter) Sweep(ttl time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	deadline := l.now().Add(-ttl)
	dropped := 0
	for key, b := range l.buckets {
		if b.seen.Before(deadline) {
			delete(l.buckets, key)
			dropped++
		}
	}
	return dropped
}

// Run sweeps every interval until ctx is cancelled. A non-positive interval
// disables sweeping.
func (l *Limiter) Run(ctx context.Context, interval, ttl time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := l.Sweep(ttl); n > 0 {
				l.logger.Debug("rate limit buckets swept", slog.Int("dropped", n))
			}
		case <-ctx.Done():
			return
		}
	}
}

// Limit keys the bucket with keyFn, usually the client id.
func (l *Limiter) Limit(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(keyFn(c)) {
			c.JSON(http.StatusTooManyRequests, http_common.ErrorResponse{
				Message: "Too many requests",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
