package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/classroom-tasks/internal/ratelimit"
	"github.com/oksasatya/classroom-tasks/pkg/response"
)

// ipFromCtx extracts the client IP from Gin context, falling back to "unknown"
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

// KeyFunc builds a rate-limit key from the request
type KeyFunc func(c *gin.Context) string

// KeyByIP returns a key function that limits by client IP only
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "ip:" + ipFromCtx(c)
	}
}

// LoginThrottle counts every request against the limiter and answers 429 once
// the client key is out of attempts. Limiter errors fail open.
func LoginThrottle(l ratelimit.Limiter, keyFn KeyFunc, allow AllowFunc, logger *logrus.Logger) gin.HandlerFunc {
	if l == nil || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if allow != nil && allow(c) {
			c.Next()
			return
		}
		// skip OPTIONS
		if strings.EqualFold(c.Request.Method, http.MethodOptions) {
			c.Next()
			return
		}

		key := keyFn(c)
		d, err := l.Allow(c.Request.Context(), key)
		if err != nil {
			if logger != nil {
				logger.WithError(err).WithFields(logrus.Fields{
					"request_id": c.GetString("request_id"),
					"key":        key,
				}).Warn("login limiter unavailable, allowing request")
			}
			c.Next()
			return
		}
		if !d.Allowed {
			mins := d.RetryAfterMinutes()
			c.Header("Retry-After", strconv.Itoa(d.RetryAfterSeconds()))
			response.Abort(c, http.StatusTooManyRequests,
				fmt.Sprintf("too many login attempts, try again in %d minutes", mins),
				gin.H{"retryAfterMinutes": mins})
			return
		}
		c.Next()
	}
}
