package middlewares

import (
	"context"
	"errors"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/5w1tchy/textbooks-api/internal/api/httpx"
)

var errBucketReply = errors.New("token bucket: unexpected script reply")

type KeyFunc func(r *http.Request) string

// PerIPKey keys limits by client address.
func PerIPKey(prefix string) KeyFunc {
	return func(r *http.Request) string {
		ip := clientIP(r)
		if ip == "" {
			ip = "unknown"
		}
		return prefix + ":" + ip
	}
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// peer address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(ip) != nil {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// verdict is one limiter decision for one request.
type verdict struct {
	allowed    bool
	limit      int
	remaining  int64
	retryAfter time.Duration
}

// deny writes the rate limit headers, and the 429 body when v is a denial.
// It reports whether the request was rejected.
func (v verdict) deny(w http.ResponseWriter, policy string) bool {
	h := w.Header()
	h.Set("X-RateLimit-Policy", policy)
	h.Set("X-RateLimit-Limit", strconv.Itoa(v.limit))
	h.Set("X-RateLimit-Remaining", strconv.FormatInt(max(v.remaining, 0), 10))
	if v.allowed {
		return false
	}
	sec := max(int64(math.Ceil(v.retryAfter.Seconds())), 1)
	h.Set("Retry-After", strconv.FormatInt(sec, 10))
	tooMany(w)
	return true
}

type decider interface {
	decide(ctx context.Context, key string) (verdict, error)
}

// guard applies d to every request and lets it through when d errors.
func guard(d decider, policy string, keyFn KeyFunc, log logrus.FieldLogger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)
			v, err := d.decide(r.Context(), key)
			if err != nil {
				log.WithError(err).WithField("policy", policy).Warn("rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}
			if v.deny(w, policy) {
				log.WithFields(logrus.Fields{"key": key, "policy": policy}).Info("rate limited")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// tokenBucketScript refills KEYS[1] at ARGV[1] tokens/s up to ARGV[2] and
// takes one token. It returns {allowed, whole tokens left, retry ms}.
var tokenBucketScript = redis.NewScript(`
local rate, cap = tonumber(ARGV[1]), tonumber(ARGV[2])
local t = redis.call('TIME')
local now = tonumber(t[1]) * 1000 + math.floor(tonumber(t[2]) / 1000)

local state = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(state[1]) or cap
local ts = tonumber(state[2]) or now
if now > ts then
  tokens = math.min(cap, tokens + (now - ts) * rate / 1000)
end

local ok, wait = 0, 0
if tokens >= 1 then
  tokens = tokens - 1
  ok = 1
else
  wait = math.ceil((1 - tokens) * 1000 / rate)
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', now)
redis.call('PEXPIRE', KEYS[1], math.ceil(cap * 1000 / rate))
return {ok, math.floor(tokens), wait}
`)

// RedisTokenBucket smooths bursts across every instance sharing the Redis.
type RedisTokenBucket struct {
	rdb   redis.Scripter
	rate  float64
	burst int
	mw    Middleware
}

func NewRedisTokenBucket(rdb redis.Scripter, ratePerSecond float64, burst int, keyFn KeyFunc, log logrus.FieldLogger) *RedisTokenBucket {
	tb := &RedisTokenBucket{rdb: rdb, rate: ratePerSecond, burst: burst}
	tb.mw = guard(tb, "token-bucket", keyFn, log)
	return tb
}

func (tb *RedisTokenBucket) decide(ctx context.Context, key string) (verdict, error) {
	res, err := tokenBucketScript.Run(ctx, tb.rdb, []string{key},
		strconv.FormatFloat(tb.rate, 'f', -1, 64), tb.burst).Int64Slice()
	if err != nil {
		return verdict{}, err
	}
	if len(res) != 3 {
		return verdict{}, errBucketReply
	}
	return verdict{
		allowed:    res[0] == 1,
		limit:      tb.burst,
		remaining:  res[1],
		retryAfter: time.Duration(res[2]) * time.Millisecond,
	}, nil
}

func (tb *RedisTokenBucket) Middleware(next http.Handler) http.Handler { return tb.mw(next) }

// RedisSlidingWindow caps requests per key over a rolling window, one sorted
// set member per request.
type RedisSlidingWindow struct {
	rdb    redis.Cmdable
	limit  int
	window time.Duration
	now    func() time.Time
	mw     Middleware
}

func NewRedisSlidingWindow(rdb redis.Cmdable, limit int, window time.Duration, keyFn KeyFunc, log logrus.FieldLogger) *RedisSlidingWindow {
	sw := &RedisSlidingWindow{rdb: rdb, limit: limit, window: window, now: time.Now}
	sw.mw = guard(sw, "sliding-window", keyFn, log)
	return sw
}

func (sw *RedisSlidingWindow) decide(ctx context.Context, key string) (verdict, error) {
	now := sw.now()
	cutoff := now.Add(-sw.window).UnixMilli()

	var (
		count  *redis.IntCmd
		oldest *redis.ZSliceCmd
	)
	_, err := sw.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(cutoff, 10))
		p.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMilli()), Member: uuid.NewString()})
		count = p.ZCard(ctx, key)
		oldest = p.ZRangeWithScores(ctx, key, 0, 0)
		p.PExpire(ctx, key, sw.window+time.Second)
		return nil
	})
	if err != nil {
		return verdict{}, err
	}

	n := count.Val()
	v := verdict{allowed: n <= int64(sw.limit), limit: sw.limit, remaining: int64(sw.limit) - n}
	if !v.allowed {
		v.retryAfter = time.Second
		if z := oldest.Val(); len(z) == 1 {
			free := time.UnixMilli(int64(z[0].Score)).Add(sw.window)
			v.retryAfter = max(free.Sub(now), time.Second)
		}
	}
	return v, nil
}

func (sw *RedisSlidingWindow) Middleware(next http.Handler) http.Handler { return sw.mw(next) }

func tooMany(w http.ResponseWriter) {
	httpx.WriteJSON(w, http.StatusTooManyRequests, map[string]string{"message": "Too Many Requests"})
}
