package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Limiter counts hits against a key within a fixed window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, err error)
}

// RateLimit rejects clients that exceed limit requests per window with 429.
// The client is identified by its IP. Limiter errors let the request through.
func RateLimit(limiter Limiter, scope string, limit int, window time.Duration, log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := "ratelimit:" + scope + ":" + c.IP()
		allowed, err := limiter.Allow(c.UserContext(), key, limit, window)
		if err != nil {
			log.WithField("key", key).Warnf("Rate limiter unavailable: %v", err)
			return c.Next()
		}
		if !allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(window.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many requests, please try again later",
			})
		}
		return c.Next()
	}
}
