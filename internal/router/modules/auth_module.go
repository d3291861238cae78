package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/classroom-tasks/internal/interface/http"
	"github.com/oksasatya/classroom-tasks/internal/interface/middleware"
	"github.com/oksasatya/classroom-tasks/internal/ratelimit"
)

// AuthModule wires signup and the throttled login.
// Public: POST /api/auth/signup, POST /api/auth/login
type AuthModule struct {
	Handler *handlers.AuthHandler
	Limiter ratelimit.Limiter
	Allow   middleware.AllowFunc
	Logger  *logrus.Logger
}

func NewAuthModule(h *handlers.AuthHandler, limiter ratelimit.Limiter, allow middleware.AllowFunc, logger *logrus.Logger) *AuthModule {
	return &AuthModule{Handler: h, Limiter: limiter, Allow: allow, Logger: logger}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	loginLimiter := middleware.LoginThrottle(m.Limiter, middleware.KeyByIP(), m.Allow, m.Logger)

	rg.POST("/auth/signup", m.Handler.Signup)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
}
