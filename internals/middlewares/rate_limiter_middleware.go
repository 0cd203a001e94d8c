package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func limit(max int, window time.Duration, message string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": message,
			})
		},
	})
}

// GlobalRateLimiter applies to every API route.
func GlobalRateLimiter() fiber.Handler {
	return limit(100, time.Minute, "Too many requests. Please try again later.")
}

// LoginRateLimiter is stricter, for credential checks.
func LoginRateLimiter() fiber.Handler {
	return limit(5, time.Minute, "Too many login attempts. Please wait a moment.")
}

// UploadRateLimiter guards signature uploads.
func UploadRateLimiter() fiber.Handler {
	return limit(10, 10*time.Minute, "Too many uploads. Please try again in a few minutes.")
}
