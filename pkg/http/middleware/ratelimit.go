package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Allower decides whether a request keyed by client identity may proceed.
type Allower interface {
	Allow(key string) bool
}

// RateLimit rejects requests over the per-IP budget with 429. Paths in skip
// (health, metrics) are never limited.
func RateLimit(l Allower, skip ...string) echo.MiddlewareFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := skipped[c.Path()]; ok {
				return next(c)
			}
			if !l.Allow(c.RealIP()) {
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"status":  http.StatusTooManyRequests,
					"message": http.StatusText(http.StatusTooManyRequests),
					"data":    "rate limit exceeded",
				})
			}
			return next(c)
		}
	}
}
