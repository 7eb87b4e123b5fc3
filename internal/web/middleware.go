package web

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"bookvideolink/internal/config"
	"bookvideolink/internal/domain"
	"bookvideolink/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	ctxRequestID    = "requestID"
	ctxSessionID    = "sessionID"
	ctxSessionKnown = "sessionKnown"
	ctxUser         = "user"

	requestIDHeader = "X-Request-Id"
)

// requestLogger writes one access log line and one metric per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ctxRequestID, requestID)
		c.Header(requestIDHeader, requestID)

		start := time.Now()
		c.Next()
		dur := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.IncHTTP(route, status)

		event := s.logger.Info()
		if status >= http.StatusInternalServerError {
			event = s.logger.Error()
		}
		event.
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("route", route).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration", dur).
			Msg("http request")
	}
}

func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		s.logger.Error().
			Interface("panic", recovered).
			Str("request_id", c.GetString(ctxRequestID)).
			Str("path", c.Request.URL.Path).
			Msg("recovered from panic")
		s.renderError(c, http.StatusInternalServerError)
		c.Abort()
	})
}

// errorHandler renders the page for the last error a handler pushed, unless it already responded.
func (s *Server) errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, domain.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, domain.ErrAlreadySubmitted):
			status = http.StatusConflict
		}

		event := s.logger.Error()
		if status < http.StatusInternalServerError {
			event = s.logger.Warn()
		}
		event.Err(err).
			Str("request_id", c.GetString(ctxRequestID)).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Msg("request failed")

		s.renderError(c, status)
	}
}

const (
	limiterIdleTTL    = 10 * time.Minute
	limiterSweepEvery = time.Minute
)

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

// rateLimiter hands out one token bucket per key. Buckets idle for limiterIdleTTL are dropped.
type rateLimiter struct {
	limiters  sync.Map
	cfg       config.RateLimitConfig
	now       func() time.Time
	lastSweep atomic.Int64
}

func newRateLimiter(cfg config.RateLimitConfig) *rateLimiter {
	return &rateLimiter{cfg: cfg, now: time.Now}
}

func (l *rateLimiter) getLimiter(key string) *rate.Limiter {
	now := l.now()
	l.sweep(now)

	if v, ok := l.limiters.Load(key); ok {
		if e, ok := v.(*limiterEntry); ok {
			e.lastSeen.Store(now.UnixNano())
			return e.lim
		}
	}

	burst := l.cfg.Burst
	if burst <= 0 {
		burst = 10
	}

	e := &limiterEntry{lim: rate.NewLimiter(rate.Limit(l.cfg.RPS), burst)}
	e.lastSeen.Store(now.UnixNano())
	actual, loaded := l.limiters.LoadOrStore(key, e)
	if loaded {
		if actualEntry, ok := actual.(*limiterEntry); ok {
			actualEntry.lastSeen.Store(now.UnixNano())
			return actualEntry.lim
		}
	}
	return e.lim
}

// sweep drops idle buckets, at most once per limiterSweepEvery.
func (l *rateLimiter) sweep(now time.Time) {
	last := l.lastSweep.Load()
	if now.UnixNano()-last < int64(limiterSweepEvery) {
		return
	}
	if !l.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}
	cutoff := now.Add(-limiterIdleTTL).UnixNano()
	l.limiters.Range(func(k, v any) bool {
		if e, ok := v.(*limiterEntry); !ok || e.lastSeen.Load() < cutoff {
			l.limiters.Delete(k)
		}
		return true
	})
}

func (l *rateLimiter) size() int {
	n := 0
	l.limiters.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// rateLimit keys requests by session when the cookie was valid and by client IP otherwise,
// so clients that drop cookies share one bucket.
func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter.cfg.RPS <= 0 {
			c.Next()
			return
		}
		key := "ip:" + c.ClientIP()
		if c.GetBool(ctxSessionKnown) {
			key = "session:" + sessionID(c)
		}
		if !s.limiter.getLimiter(key).Allow() {
			s.renderError(c, http.StatusTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}
