package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"vorve-checkout-api/utils"
)

// RateLimitConfig is the per-client budget for a group of endpoints.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Message  string
}

func DefaultRateLimitConfig(requests int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Requests: requests,
		Window:   window,
		Message:  "Too many requests. Please try again later.",
	}
}

type RateLimiter struct {
	client *redis.Client
	config RateLimitConfig
	log    *zap.Logger
	now    func() time.Time
}

func NewRateLimiter(client *redis.Client, config RateLimitConfig, log *zap.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		config: config,
		log:    log.Named("ratelimit"),
		now:    time.Now,
	}
}

// Limit wraps next with the limiter. Redis failures let the request through.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		key := rl.key(r)
		allowed, remaining, resetTime, err := rl.check(r.Context(), key)
		if err != nil {
			rl.log.Warn("rate limit check failed, allowing request", zap.String("path", r.URL.Path), zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.config.Requests))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			rl.log.Warn("rate limit exceeded", zap.String("key", key), zap.String("path", r.URL.Path))
			retryAfter := int64(resetTime.Sub(rl.now()).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
			utils.SendErrorResponse(w, http.StatusTooManyRequests, rl.config.Message)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) key(r *http.Request) string {
	return fmt.Sprintf("rate_limit:%s:%s", ClientIP(r), r.URL.Path)
}

// ClientIP returns the originating client address, honouring proxy headers.
func ClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		ips := strings.Split(ip, ",")
		return strings.TrimSpace(ips[0])
	}

	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// Sliding window over a sorted set: drop entries older than the window,
// then admit the request if the remaining count is under the limit.
const rateLimitScript = `
local key = KEYS[1]
local window_start = tonumber(ARGV[1])
local limit = tonumber(ARGV[2])
local now = ARGV[3]
local member = ARGV[4]
local ttl = tonumber(ARGV[5])

redis.call('ZREMRANGEBYSCORE', key, 0, window_start - 1)

local current = redis.call('ZCARD', key)
if current < limit then
	redis.call('ZADD', key, now, member)
	redis.call('EXPIRE', key, ttl)
	return {1, limit - current - 1}
end
return {0, 0}
`

func (rl *RateLimiter) check(ctx context.Context, key string) (allowed bool, remaining int, resetTime time.Time, err error) {
	now := rl.now()
	windowStart := now.Add(-rl.config.Window)
	resetTime = now.Add(rl.config.Window)
	ttl := int64(rl.config.Window.Seconds()) + 1

	result, err := rl.client.Eval(ctx, rateLimitScript, []string{key},
		windowStart.UnixMilli(), rl.config.Requests, now.UnixMilli(), uuid.NewString(), ttl).Result()
	if err != nil {
		return false, 0, time.Time{}, err
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		return false, 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}

	allowedInt, ok1 := values[0].(int64)
	remainingInt, ok2 := values[1].(int64)
	if !ok1 || !ok2 {
		return false, 0, time.Time{}, fmt.Errorf("failed to parse redis result")
	}

	return allowedInt == 1, int(remainingInt), resetTime, nil
}
