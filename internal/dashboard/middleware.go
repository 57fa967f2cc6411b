package dashboard

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"SignalBoard/internal/logger"
	"SignalBoard/internal/metrics"
)

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeaderKey)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(RequestIDHeaderKey, requestID)
		c.Set(RequestIDContextKey, requestID)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}

func accessLogMiddleware(log *slog.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		m.ObserveHTTP(c.Request.Method, route, strconv.Itoa(status), latency)

		log.Info("request",
			slog.String("request_id", logger.RequestID(c.Request.Context())),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("latency", latency),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}

// requireSession rejects requests without a live session cookie. With no
// password configured the dashboard is closed entirely.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.auth.Configured() {
			s.handleError(c, ErrAuthNotConfigured, http.StatusServiceUnavailable,
				"Dashboard password is not configured: set auth.password or AUTH_PASSWORD.")
			c.Abort()
			return
		}
		id, err := c.Cookie(SessionCookieName)
		if err != nil || !s.sessions.Valid(id) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":      "login required",
				"request_id": requestID(c),
			})
			return
		}
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	if v, ok := c.Get(RequestIDContextKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return "unknown"
}
