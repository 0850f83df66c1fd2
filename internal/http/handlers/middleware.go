package handlers

import (
	"net"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	applog "invadmin/internal/log"
)

// CSRF guards the console form. The JSON API is not behind it.
func CSRF() fiber.Handler {
	return csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     CSRFCookie,
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ContextKey:     "csrf",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"form": c.FormValue("csrf")})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	})
}

// RateLimit allows max console requests per window and client IP.
func RateLimit(max int, window time.Duration) fiber.Handler {
	return rateLimit(max, window, nil)
}

// APIRateLimit limits API callers per IP but skips loopback callers. When the
// API is mounted next to the console, those are the console's own requests
// and the operator was already counted on the console route.
func APIRateLimit(max int, window time.Duration) fiber.Handler {
	return rateLimit(max, window, func(c *fiber.Ctx) bool {
		ip := net.ParseIP(c.IP())
		return ip != nil && ip.IsLoopback()
	})
}

func rateLimit(max int, window time.Duration, skip func(*fiber.Ctx) bool) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		Next:       skip,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.hit", nil)
			if strings.HasPrefix(c.Path(), "/inventory") {
				return apiError(c, fiber.StatusTooManyRequests, "rate limit exceeded, retry soon")
			}
			return c.Status(fiber.StatusTooManyRequests).Render("notfound", fiber.Map{"Message": "Too many requests. Please try again later."})
		},
	})
}
