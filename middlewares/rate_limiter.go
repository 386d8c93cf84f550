package middlewares

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/AlexHayrapetyan/RestoBook/config"
	"github.com/AlexHayrapetyan/RestoBook/utils"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimiter is a token bucket per client IP. With a redis client the
// bucket lives in redis and is shared between replicas; otherwise each
// process keeps its own x/time/rate limiters.
type RateLimiter struct {
	capacity int
	refill   time.Duration
	rdb      *redis.Client
	prefix   string

	mu        sync.Mutex
	ips       map[string]*ipLimiter
	lastSweep time.Time
	now       func() time.Time
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(cfg config.RateLimitConfig, rdb *redis.Client) *RateLimiter {
	refill := cfg.Refill
	if refill <= 0 {
		refill = time.Second
	}
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = 1
	}
	return &RateLimiter{
		capacity: capacity,
		refill:   refill,
		rdb:      rdb,
		prefix:   "restobook:rl",
		ips:      make(map[string]*ipLimiter),
		now:      time.Now,
	}
}

// NewStrictRateLimiter -> lebih ketat untuk endpoint login/signup, 5 request per menit per IP
func NewStrictRateLimiter(rdb *redis.Client) gin.HandlerFunc {
	rl := NewRateLimiter(config.RateLimitConfig{Enabled: true, Capacity: 5, Refill: 12 * time.Second}, rdb)
	rl.prefix = "restobook:rl:auth"
	return rl.RateLimit()
}

var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local interval_ms = tonumber(ARGV[3])
local ttl_seconds = tonumber(ARGV[4])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
	tokens = capacity
	last_refill = now_ms
end

local elapsed = math.max(0, now_ms - last_refill)
local intervals = math.floor(elapsed / interval_ms)
if intervals > 0 then
	tokens = math.min(capacity, tokens + intervals)
	last_refill = last_refill + (intervals * interval_ms)
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
	allowed = 1
	tokens = tokens - 1
else
	retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)

return { allowed, tokens, retry_after_ms }
`)

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		allowed, remaining, retry := rl.allow(c, ip)
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.capacity))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			secs := int(math.Ceil(retry.Seconds()))
			c.Header("Retry-After", strconv.Itoa(secs))
			c.JSON(http.StatusTooManyRequests, utils.JSONResponse{
				Status:  false,
				Message: "Too many requests, please wait a moment",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(c *gin.Context, ip string) (bool, int, time.Duration) {
	if rl.rdb != nil {
		ok, remaining, retry, err := rl.allowRedis(c, ip)
		if err == nil {
			return ok, remaining, retry
		}
		utils.ErrorLogger.Warnf("rate limiter: redis unavailable, using local bucket: %v", err)
	}
	return rl.allowLocal(ip)
}

func (rl *RateLimiter) allowRedis(c *gin.Context, ip string) (bool, int, time.Duration, error) {
	key := rl.prefix + ":ip:" + ip
	ttl := int64(rl.refill*time.Duration(rl.capacity)/time.Second) + 1
	vals, err := tokenBucketScript.Run(c.Request.Context(), rl.rdb, []string{key},
		time.Now().UnixMilli(), rl.capacity, rl.refill.Milliseconds(), ttl).Int64Slice()
	if err != nil {
		return false, 0, 0, err
	}
	if len(vals) != 3 {
		return true, rl.capacity, 0, nil
	}
	return vals[0] == 1, int(vals[1]), time.Duration(vals[2]) * time.Millisecond, nil
}

// idleTTL is how long a full bucket takes to refill; an IP idle for longer
// is indistinguishable from a new one and can be dropped.
func (rl *RateLimiter) idleTTL() time.Duration {
	return rl.refill * time.Duration(rl.capacity)
}

func (rl *RateLimiter) allowLocal(ip string) (bool, int, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	if now.Sub(rl.lastSweep) >= rl.idleTTL() {
		rl.evictIdle(now)
	}
	entry, ok := rl.ips[ip]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(rate.Every(rl.refill), rl.capacity)}
		rl.ips[ip] = entry
	}
	entry.lastSeen = now
	limiter := entry.limiter
	rl.mu.Unlock()

	r := limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, 0, delay
	}
	return true, int(limiter.TokensAt(now)), 0
}

// evictIdle must be called with rl.mu held.
func (rl *RateLimiter) evictIdle(now time.Time) {
	ttl := rl.idleTTL()
	for ip, entry := range rl.ips {
		if now.Sub(entry.lastSeen) >= ttl {
			delete(rl.ips, ip)
		}
	}
	rl.lastSweep = now
}
