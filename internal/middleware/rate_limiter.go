package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/xZoluGames/InventarioApp-sub001/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const purgeInterval = 5 * time.Minute

// window tracks request counts for one client IP.
type window struct {
	count int
	end   time.Time
}

// limiter is a fixed-window counter per client IP. Expired windows are
// purged periodically so IPs that never return do not accumulate.
type limiter struct {
	name   string
	limit  int
	period time.Duration
	now    func() time.Time

	mu      sync.Mutex
	clients map[string]*window
	purge   sync.Once
}

func newLimiter(name string, limit int, period time.Duration) *limiter {
	return &limiter{name: name, limit: limit, period: period, now: time.Now, clients: map[string]*window{}}
}

// allow counts one request for ip and reports whether it fits the window.
func (l *limiter) allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	w, ok := l.clients[ip]
	if !ok || now.After(w.end) {
		w = &window{end: now.Add(l.period)}
		l.clients[ip] = w
	}
	w.count++
	return w.count <= l.limit, w.end
}

func (l *limiter) purgeExpired() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	purged := 0
	for ip, w := range l.clients {
		if now.After(w.end) {
			delete(l.clients, ip)
			purged++
		}
	}
	if purged > 0 {
		log.Debug().Str("limiter", l.name).Int("purged", purged).Int("remaining", len(l.clients)).
			Msg("rate limiter entries purged")
	}
}

func (l *limiter) startPurge() {
	l.purge.Do(func() {
		go func() {
			ticker := time.NewTicker(purgeInterval)
			defer ticker.Stop()
			for range ticker.C {
				l.purgeExpired()
			}
		}()
	})
}

func (l *limiter) handler(msg string) gin.HandlerFunc {
	l.startPurge()
	return func(c *gin.Context) {
		ok, end := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", end.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return newLimiter("login", 20, time.Minute).handler("too many login attempts, try again in a minute")
}

// RateLimiter limits every client IP to limit requests per period.
func RateLimiter(limit int, period time.Duration) gin.HandlerFunc {
	return newLimiter("api", limit, period).handler("too many requests, try again shortly")
}
