package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/securemov/ana-chat/backend/internal/metrics"
	"github.com/securemov/ana-chat/backend/pkg/utils"
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter limits requests per client IP with a token bucket.
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*client
	limit    rate.Limit
	burst    int
	expiry   time.Duration
	endpoint string
	logger   zerolog.Logger
}

// NewRateLimiter allows perMinute requests per IP with the given burst. A
// perMinute of 0 disables limiting.
func NewRateLimiter(endpoint string, perMinute, burst int, logger zerolog.Logger) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60)
	}
	return &RateLimiter{
		clients:  make(map[string]*client),
		limit:    limit,
		burst:    burst,
		expiry:   time.Hour,
		endpoint: endpoint,
		logger:   logger,
	}
}

// Middleware enforces the limit.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(w, r) {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Allow takes a token for the request's client. When the bucket is empty it
// writes a 429 response and returns false.
func (rl *RateLimiter) Allow(w http.ResponseWriter, r *http.Request) bool {
	key := clientIP(r)
	if rl.allow(key, time.Now()) {
		return true
	}
	metrics.RateLimitHits.WithLabelValues(rl.endpoint).Inc()
	rl.logger.Warn().Str("client", key).Str("endpoint", rl.endpoint).Msg("rate limit exceeded")
	w.Header().Set("Retry-After", strconv.Itoa(rl.retryAfter()))
	utils.RespondError(w, http.StatusTooManyRequests, "too many requests")
	return false
}

func (rl *RateLimiter) allow(key string, now time.Time) bool {
	if rl.limit == rate.Inf {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for k, c := range rl.clients {
		if now.Sub(c.lastSeen) > rl.expiry {
			delete(rl.clients, k)
		}
	}

	c, ok := rl.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) retryAfter() int {
	seconds := int(1 / float64(rl.limit))
	if seconds < 1 {
		return 1
	}
	return seconds
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
