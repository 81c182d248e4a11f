package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Payphone-Digital/bilemo/internal/constants"
	"github.com/Payphone-Digital/bilemo/pkg/logger"
	"github.com/Payphone-Digital/bilemo/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimiter is a sliding window of request times per client IP
type RateLimiter struct {
	tokens     map[string][]time.Time
	maxRequest int
	duration   time.Duration
	mu         sync.Mutex
	now        func() time.Time
}

func NewRateLimiter(maxRequest int, duration time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:     make(map[string][]time.Time),
		maxRequest: maxRequest,
		duration:   duration,
		now:        time.Now,
	}
}

func (rl *RateLimiter) cleanup(now time.Time) {
	for ip, tokens := range rl.tokens {
		var valid []time.Time
		for _, t := range tokens {
			if now.Sub(t) <= rl.duration {
				valid = append(valid, t)
			}
		}
		if len(valid) > 0 {
			rl.tokens[ip] = valid
		} else {
			delete(rl.tokens, ip)
		}
	}
}

// allow records a request from ip and returns how many remain in the window
func (rl *RateLimiter) allow(ip string) (remaining int, ok bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.cleanup(now)

	tokens := rl.tokens[ip]
	if len(tokens) >= rl.maxRequest {
		return 0, false
	}
	rl.tokens[ip] = append(tokens, now)
	return rl.maxRequest - len(tokens) - 1, true
}

// Middleware rejects clients over the limit with 429. m may be nil.
func (rl *RateLimiter) Middleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		remaining, ok := rl.allow(ip)
		if !ok {
			logger.GetLogger().Warn("Rate limit exceeded",
				zap.String("client_ip", ip),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Int("max_requests", rl.maxRequest),
				zap.Duration("duration", rl.duration),
			)
			if m != nil {
				m.RateLimitedTotal.Inc()
			}

			c.Header("Retry-After", strconv.Itoa(int(rl.duration.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, constants.BuildErrorResponse(constants.MsgTooManyRequests, nil))
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.maxRequest))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		c.Next()
	}
}

func RateLimit(maxRequest int, duration time.Duration, m *metrics.Metrics) gin.HandlerFunc {
	return NewRateLimiter(maxRequest, duration).Middleware(m)
}
