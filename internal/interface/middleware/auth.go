package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/classroom-tasks/internal/domain/entity"
	"github.com/oksasatya/classroom-tasks/internal/domain/repository"
	"github.com/oksasatya/classroom-tasks/pkg/helpers"
	"github.com/oksasatya/classroom-tasks/pkg/response"
)

const (
	CtxUserIDKey   = "userID"
	CtxUserRoleKey = "userRole"
	CtxUserKey     = "user"
)

func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// Auth validates the bearer access token and reloads the user it names, so a
// deleted account stops working before its token expires. It sets userID,
// userRole and user in the Gin context on success.
func Auth(users repository.UserRepository, jwt *helpers.JWTManager, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid access token", nil)
			return
		}

		u, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				response.Abort(c, http.StatusUnauthorized, "user no longer exists", nil)
				return
			}
			if logger != nil {
				logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("auth user lookup failed")
			}
			response.Abort(c, http.StatusInternalServerError, "server error", nil)
			return
		}

		c.Set(CtxUserIDKey, u.ID)
		c.Set(CtxUserRoleKey, string(u.Role))
		c.Set(CtxUserKey, u)
		c.Next()
	}
}

// CurrentUser returns the user loaded by Auth.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.User)
	return u, ok && u != nil
}
