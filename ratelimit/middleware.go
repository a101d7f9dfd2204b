package ratelimit

import (
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// KeyFunc derives the limiter key for a request; an empty key skips limiting.
type KeyFunc func(c *fiber.Ctx) string

// New limits requests per key. Limiter errors let the request through.
func New(l Limiter, scope string, key KeyFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		k := key(c)
		if k == "" {
			return c.Next()
		}
		d, err := l.Allow(c.UserContext(), scope+":"+k)
		if err != nil {
			log.WithError(err).WithField("scope", scope).Warn("rate limiter unavailable, allowing request")
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			secs := int(math.Ceil(d.RetryAfter.Seconds()))
			if secs < 1 {
				secs = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(secs))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "rate limit exceeded",
				"retry_after": secs,
			})
		}
		return c.Next()
	}
}
