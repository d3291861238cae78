package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/classroom-tasks/internal/domain/entity"
	"github.com/oksasatya/classroom-tasks/internal/infrastructure/memory"
	"github.com/oksasatya/classroom-tasks/internal/ratelimit"
	"github.com/oksasatya/classroom-tasks/pkg/helpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Status    int            `json:"status"`
	RequestID string         `json:"request_id"`
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	Error     map[string]any `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestAuth(t *testing.T) {
	users := memory.NewUserRepository()
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	u := &entity.User{Email: "a@school.test", Role: entity.RoleTeacher}
	require.NoError(t, users.Create(context.Background(), u))
	good, _, err := jwt.GenerateAccessToken(u.ID)
	require.NoError(t, err)
	ghost, _, err := jwt.GenerateAccessToken("deleted-user")
	require.NoError(t, err)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/me", Auth(users, jwt, helpers.NewDiscardLogger()), func(c *gin.Context) {
		cu, ok := CurrentUser(c)
		require.True(t, ok)
		c.String(http.StatusOK, c.GetString(CtxUserIDKey)+"|"+c.GetString(CtxUserRoleKey)+"|"+cu.Email)
	})

	cases := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"missing", "", http.StatusUnauthorized, "missing access token"},
		{"wrong scheme", "Basic " + good, http.StatusUnauthorized, "missing access token"},
		{"garbage", "Bearer not.a.token", http.StatusUnauthorized, "invalid access token"},
		{"user gone", "Bearer " + ghost, http.StatusUnauthorized, "user no longer exists"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			env := decode(t, w)
			assert.False(t, env.Success)
			assert.Equal(t, tc.message, env.Message)
			assert.NotEmpty(t, env.RequestID)
		})
	}

	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "bearer "+good)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, u.ID+"|teacher|a@school.test", w.Body.String())
	})
}

func throttled(l ratelimit.Limiter, allow AllowFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware(), RealIP(false))
	r.POST("/login", LoginThrottle(l, KeyByIP(), allow, helpers.NewDiscardLogger()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func post(r http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = remote
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginThrottle_DeniesAfterMax(t *testing.T) {
	r := throttled(ratelimit.NewFixedWindow(2, 15*time.Minute), nil)

	assert.Equal(t, http.StatusOK, post(r, "192.0.2.1:1000").Code)
	assert.Equal(t, http.StatusOK, post(r, "192.0.2.1:1001").Code)

	w := post(r, "192.0.2.1:1002")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "900", w.Header().Get("Retry-After"))

	env := decode(t, w)
	assert.Equal(t, "too many login attempts, try again in 15 minutes", env.Message)
	assert.EqualValues(t, 15, env.Error["retryAfterMinutes"])

	// another client is unaffected
	assert.Equal(t, http.StatusOK, post(r, "192.0.2.2:1000").Code)
}

func TestLoginThrottle_AllowBypass(t *testing.T) {
	r := throttled(ratelimit.NewFixedWindow(1, time.Minute), AllowPrivateIP())

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, post(r, "10.0.0.5:1000").Code)
	}
	assert.Equal(t, http.StatusOK, post(r, "192.0.2.1:1000").Code)
	assert.Equal(t, http.StatusTooManyRequests, post(r, "192.0.2.1:1000").Code)
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{Allowed: true}, errors.New("redis down")
}

func TestLoginThrottle_FailsOpen(t *testing.T) {
	r := throttled(brokenLimiter{}, nil)
	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, post(r, "192.0.2.1:1000").Code)
	}
}

type edgeLimiter struct{}

func (edgeLimiter) Allow(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{Allowed: false}, nil
}

func TestLoginThrottle_WindowEdgeStillReportsWait(t *testing.T) {
	w := post(throttled(edgeLimiter{}, nil), "192.0.2.1:1000")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	env := decode(t, w)
	assert.Equal(t, "too many login attempts, try again in 1 minutes", env.Message)
	assert.EqualValues(t, 1, env.Error["retryAfterMinutes"])
}

func TestRealIP(t *testing.T) {
	for _, tc := range []struct {
		name  string
		trust bool
		want  string
	}{
		{"untrusted ignores headers", false, "192.0.2.1"},
		{"trusted prefers cloudflare", true, "203.0.113.9"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(RealIP(tc.trust))
			r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("real_ip")) })

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.0.2.1:1234"
			req.Header.Set("CF-Connecting-IP", "203.0.113.9")
			req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.want, w.Body.String())
		})
	}
}

func TestRealIP_TrustedForwardedFor(t *testing.T) {
	r := gin.New()
	r.Use(RealIP(true))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("real_ip")) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "198.51.100.7", w.Body.String())
}

func TestRequestIDMiddleware_EchoesHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))
}

func TestRequestIDMiddleware_KeepsIncomingUUID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	const upstream = "3f2c1d6e-8a4b-4c7d-9e0f-123456789abc"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", upstream)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, upstream, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "not a uuid")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "not a uuid", w.Body.String())
	assert.Len(t, w.Body.String(), 36)
}
