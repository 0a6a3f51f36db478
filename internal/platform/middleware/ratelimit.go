package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/labstack/echo/v4"

	"github.com/ehr/patientflow/internal/platform/auth"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerMinute float64
	BurstSize         int
	// MaxClients bounds the number of tracked callers; the least recently
	// seen are evicted.
	MaxClients int
}

// DefaultRateLimitConfig suits a totem issuing tickets: a burst of a few
// presses, then one every two seconds.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 30,
		BurstSize:         5,
		MaxClients:        1024,
	}
}

type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	perSecond  float64
	lastRefill time.Time
}

func newTokenBucket(perMinute float64, burst int, now time.Time) *tokenBucket {
	return &tokenBucket{
		tokens:     float64(burst),
		maxTokens:  float64(burst),
		perSecond:  perMinute / 60,
		lastRefill: now,
	}
}

// take consumes a token. When none is left it returns how long until the
// next one.
func (b *tokenBucket) take(now time.Time) (bool, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens += now.Sub(b.lastRefill).Seconds() * b.perSecond
	if b.tokens > b.maxTokens {
		b.tokens = b.maxTokens
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	if b.perSecond <= 0 {
		return false, time.Second
	}
	wait := time.Duration((1 - b.tokens) / b.perSecond * float64(time.Second))
	return false, wait
}

type bucketStore struct {
	mu      sync.Mutex
	buckets *lru.Cache[string, *tokenBucket]
	cfg     RateLimitConfig
}

func newBucketStore(cfg RateLimitConfig) (*bucketStore, error) {
	size := cfg.MaxClients
	if size <= 0 {
		size = DefaultRateLimitConfig().MaxClients
	}
	cache, err := lru.New[string, *tokenBucket](size)
	if err != nil {
		return nil, fmt.Errorf("rate limit store: %w", err)
	}
	return &bucketStore{buckets: cache, cfg: cfg}, nil
}

func (s *bucketStore) get(key string, now time.Time) *tokenBucket {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.buckets.Get(key); ok {
		return b
	}
	b := newTokenBucket(s.cfg.RequestsPerMinute, s.cfg.BurstSize, now)
	s.buckets.Add(key, b)
	return b
}

// RateLimit throttles callers per authenticated user and client IP.
func RateLimit(cfg RateLimitConfig) (echo.MiddlewareFunc, error) {
	store, err := newBucketStore(cfg)
	if err != nil {
		return nil, err
	}
	limit := strconv.FormatFloat(cfg.RequestsPerMinute, 'f', 0, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()
			if uid := auth.UserIDFromContext(c.Request().Context()); uid != "" {
				key = uid + ":" + key
			}

			c.Response().Header().Set("X-RateLimit-Limit", limit)
			ok, wait := store.get(key, time.Now()).take(time.Now())
			if !ok {
				retry := int(wait/time.Second) + 1
				c.Response().Header().Set("Retry-After", strconv.Itoa(retry))
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}, nil
}
