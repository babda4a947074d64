package middlewares

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterIdle = 10 * time.Minute

type visitor struct {
	lim  *rate.Limiter
	seen time.Time
}

// MemoryLimiter is a per-key token bucket kept in process memory. It stands
// in for RedisTokenBucket when no Redis is configured; limits are then per
// instance.
type MemoryLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	ratePerS rate.Limit
	burst    int
	keyFn    KeyFunc
	now      func() time.Time
	lastGC   time.Time
}

func NewMemoryLimiter(ratePerSecond float64, burst int, keyFn KeyFunc) *MemoryLimiter {
	return &MemoryLimiter{
		visitors: make(map[string]*visitor),
		ratePerS: rate.Limit(ratePerSecond),
		burst:    burst,
		keyFn:    keyFn,
		now:      time.Now,
	}
}

func (m *MemoryLimiter) decide(key string) verdict {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.lastGC) > limiterIdle {
		for k, v := range m.visitors {
			if now.Sub(v.seen) > limiterIdle {
				delete(m.visitors, k)
			}
		}
		m.lastGC = now
	}

	v, found := m.visitors[key]
	if !found {
		v = &visitor{lim: rate.NewLimiter(m.ratePerS, m.burst)}
		m.visitors[key] = v
	}
	v.seen = now

	out := verdict{limit: m.burst}
	res := v.lim.ReserveN(now, 1)
	if d := res.DelayFrom(now); d > 0 {
		res.CancelAt(now)
		out.retryAfter = d
		return out
	}
	out.allowed = true
	out.remaining = int64(v.lim.TokensAt(now))
	return out
}

func (m *MemoryLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.decide(m.keyFn(r)).deny(w, "token-bucket") {
			return
		}
		next.ServeHTTP(w, r)
	})
}
