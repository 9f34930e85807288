package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/oksasatya/users-api/pkg/response"
)

// ipFromCtx extracts the client IP from Gin context, falling back to "unknown"
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc builds a rate-limit key from the request
type KeyFunc func(c *gin.Context) string

// KeyByIP returns a key function that limits by client IP only
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:ip:" + ipFromCtx(c)
	}
}

// KeyByIPAndPath returns a key function that limits by client IP and route
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:path:" + normalizePath(c) + ":ip:" + ipFromCtx(c)
	}
}

// KeyByAuthEmail limits per authenticated principal, or per IP when anonymous.
func KeyByAuthEmail() KeyFunc {
	return func(c *gin.Context) string {
		email := c.GetString(CtxAuthEmailKey)
		if email == "" {
			return "rl:user:anon:ip:" + ipFromCtx(c)
		}
		return "rl:user:" + email
	}
}

// incrExpireScript increments the window counter, starting the expiry on the
// first hit, and returns {count, pttl} in one round trip. A key that lost its
// expiry gets it back.
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

type AllowFunc func(*gin.Context) bool // return true for bypass limit

// limiter reports whether the request under key may proceed, how many
// requests remain and when the window resets.
type limiter interface {
	take(ctx context.Context, key string) (ok bool, remaining int, reset time.Duration, err error)
}

// RateLimit allows max requests per window per key. With a Redis client the
// counter is shared across instances; without one each process keeps its own
// token buckets.
// - standard headers (limit/remaining/reset)
// - optional allowlist bypass, OPTIONS skipped
// - fails open when Redis errors
func RateLimit(rdb *redis.Client, max int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if max <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	var l limiter
	if rdb != nil {
		l = &redisLimiter{rdb: rdb, max: max, window: window}
	} else {
		l = newLocalLimiter(max, window)
	}
	return func(c *gin.Context) {
		if allow != nil && allow(c) {
			c.Next()
			return
		}
		if strings.EqualFold(c.Request.Method, http.MethodOptions) {
			c.Next()
			return
		}

		ok, remaining, reset, err := l.take(c.Request.Context(), keyFn(c))
		if err != nil {
			c.Next()
			return
		}
		resetSec := int(reset.Round(time.Second).Seconds())

		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if !ok {
			if resetSec < 1 {
				resetSec = 1
			}
			c.Header("Retry-After", strconv.Itoa(resetSec))
			response.Error(c, http.StatusTooManyRequests, "Too many requests", nil)
			return
		}
		c.Next()
	}
}

type redisLimiter struct {
	rdb    *redis.Client
	max    int
	window time.Duration
}

func (l *redisLimiter) take(ctx context.Context, key string) (bool, int, time.Duration, error) {
	res, err := incrExpireScript.Run(ctx, l.rdb, []string{key}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return false, 0, 0, err
	}
	if len(res) != 2 {
		return false, 0, 0, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}
	count := int(res[0])
	ttl := time.Duration(res[1]) * time.Millisecond
	remaining := l.max - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= l.max, remaining, ttl, nil
}

type bucket struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// localLimiter is a per-key token bucket refilled at max/window with a burst
// of max.
type localLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	now     func() time.Time
}

const localSweepThreshold = 1024

func newLocalLimiter(max int, window time.Duration) *localLimiter {
	return &localLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Every(window / time.Duration(max)),
		burst:   max,
		ttl:     2 * window,
		now:     time.Now,
	}
}

func (l *localLimiter) take(_ context.Context, key string) (bool, int, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) >= localSweepThreshold {
			l.sweep(now)
		}
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastAccess = now

	allowed := b.limiter.AllowN(now, 1)
	tokens := b.limiter.TokensAt(now)
	remaining := int(tokens)
	if remaining < 0 {
		remaining = 0
	}
	var reset time.Duration
	if tokens < 1 {
		reset = time.Duration((1 - tokens) / float64(l.limit) * float64(time.Second))
	}
	return allowed, remaining, reset, nil
}

func (l *localLimiter) sweep(now time.Time) {
	for k, b := range l.buckets {
		if now.Sub(b.lastAccess) > l.ttl {
			delete(l.buckets, k)
		}
	}
}
