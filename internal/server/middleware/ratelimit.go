package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/logger"
)

// Decision — результат проверки лимита для одного запроса.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Duration
}

// Limiter решает, пропускать ли очередной запрос с ключом key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// KeyFunc строит ключ лимита из запроса.
type KeyFunc func(r *http.Request) string

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		return "unknown"
	}
	return host
}

// KeyByIP — лимит на IP клиента.
func KeyByIP() KeyFunc {
	return func(r *http.Request) string {
		return "rl:ip:" + clientIP(r)
	}
}

// KeyByIPAndPath — лимит на пару путь + IP.
func KeyByIPAndPath() KeyFunc {
	return func(r *http.Request) string {
		return "rl:path:" + r.URL.Path + ":ip:" + clientIP(r)
	}
}

// RateLimit отклоняет запросы сверх лимита ответом 429.
// Ошибка лимитера не блокирует запрос (fail-open), но логируется.
func RateLimit(l Limiter, keyFn KeyFunc, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			d, err := l.Allow(r.Context(), keyFn(r))
			if err != nil {
				log.Warn("rate limiter unavailable", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			resetSec := int((d.Reset + time.Second - 1) / time.Second)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.Itoa(resetSec))

			if !d.Allowed {
				if resetSec > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(resetSec))
				}
				writeError(w, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type client struct {
	lim  *rate.Limiter
	seen time.Time
}

// LocalLimiter — token bucket на ключ в памяти процесса.
type LocalLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	r       rate.Limit
	burst   int
	idle    time.Duration
}

// NewLocalLimiter создаёт лимитер rps/burst. Записи, не использованные дольше idle,
// удаляются фоновой очисткой, которая останавливается вместе с ctx.
func NewLocalLimiter(ctx context.Context, rps float64, burst int, idle time.Duration) *LocalLimiter {
	if idle <= 0 {
		idle = 3 * time.Minute
	}
	l := &LocalLimiter{
		clients: make(map[string]*client),
		r:       rate.Limit(rps),
		burst:   burst,
		idle:    idle,
	}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.cleanup(time.Now())
			}
		}
	}()
	return l
}

func (l *LocalLimiter) cleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, c := range l.clients {
		if now.Sub(c.seen) > l.idle {
			delete(l.clients, key)
		}
	}
}

func (l *LocalLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if c, ok := l.clients[key]; ok {
		c.seen = time.Now()
		return c.lim
	}
	lim := rate.NewLimiter(l.r, l.burst)
	l.clients[key] = &client{lim: lim, seen: time.Now()}
	return lim
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (Decision, error) {
	lim := l.get(key)
	now := time.Now()

	allowed := lim.AllowN(now, 1)
	tokens := int(lim.TokensAt(now))
	if tokens < 0 {
		tokens = 0
	}

	var reset time.Duration
	if !allowed && l.r > 0 {
		reset = time.Duration(float64(time.Second) / float64(l.r))
	}
	return Decision{Allowed: allowed, Limit: l.burst, Remaining: tokens, Reset: reset}, nil
}

// атомарно: INCR и TTL окна при первом запросе
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

// RedisLimiter — фиксированное окно в Redis: не больше max запросов за window
// на ключ, общий для всех инстансов сервера.
type RedisLimiter struct {
	client redis.Cmdable
	max    int
	window time.Duration
}

func NewRedisLimiter(client redis.Cmdable, max int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, max: max, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	res, err := incrExpireScript.Run(ctx, l.client, []string{key}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, err
	}
	count, pttl := int(res[0]), res[1]

	remaining := l.max - count
	if remaining < 0 {
		remaining = 0
	}
	var reset time.Duration
	if pttl > 0 {
		reset = time.Duration(pttl) * time.Millisecond
	}
	return Decision{Allowed: count <= l.max, Limit: l.max, Remaining: remaining, Reset: reset}, nil
}
