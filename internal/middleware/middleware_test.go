package middleware_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dungji/internal/middleware"
	"dungji/internal/models"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type stubValidator struct{}

func (stubValidator) ValidateAccessToken(token string) (jwt.MapClaims, error) {
	if token != "good" {
		return nil, errors.New("invalid token")
	}
	return jwt.MapClaims{"user_id": "u1", "username": "test@example.com", "role": "buyer"}, nil
}

func TestRequireRole(t *testing.T) {
	app := fiber.New()
	withRole := func(role string) fiber.Handler {
		return func(c *fiber.Ctx) error {
			c.Locals(middleware.LocalRole, role)
			return c.Next()
		}
	}
	ok := func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNoContent) }
	app.Post("/buyer", withRole("buyer"), middleware.RequireRole(models.RoleSeller), ok)
	app.Post("/seller", withRole("seller"), middleware.RequireRole(models.RoleSeller), ok)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/buyer", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/seller", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	app := fiber.New()
	app.Get("/me", middleware.AuthRequired(stubValidator{}, quietLogger()), func(c *fiber.Ctx) error {
		return c.SendString(middleware.UserID(c))
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"bad token", "Bearer bad", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.status == http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, "u1", string(body))
			}
		})
	}
}

type countingLimiter struct {
	hits map[string]int
	err  error
}

func (l *countingLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	l.hits[key]++
	return l.hits[key] <= limit, nil
}

func TestRateLimit(t *testing.T) {
	limiter := &countingLimiter{hits: map[string]int{}}
	app := fiber.New()
	app.Post("/login", middleware.RateLimit(limiter, "auth", 2, time.Minute, quietLogger()), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))
}

func TestRateLimit_FailsOpen(t *testing.T) {
	limiter := &countingLimiter{err: errors.New("redis down")}
	app := fiber.New()
	app.Post("/login", middleware.RateLimit(limiter, "auth", 1, time.Minute, quietLogger()), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
}
