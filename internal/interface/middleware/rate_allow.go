package middleware

import (
	"net"

	"github.com/gin-gonic/gin"
)

// AllowFunc returns true when a request bypasses the limiter.
type AllowFunc func(*gin.Context) bool

// AllowPrivateIP lets private and loopback clients through the login
// throttle. Wired only when LOGIN_LIMIT_BYPASS_PRIVATE is set.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		if parsed == nil {
			return false
		}
		// 10.0.0.0/8, 172.16/12, 192.168/16, fc00::/7, loopback
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}
