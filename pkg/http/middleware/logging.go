package middleware

import (
	"time"

	applogger "CupoCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs each request at debug level, 4xx at warn and 5xx at error.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// let echo write the response so the status below is final
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			fields := []applogger.Field{
				applogger.String("method", req.Method),
				applogger.String("route", routeLabel(c)),
				applogger.Int("status", status),
				applogger.String("remote_ip", c.RealIP()),
				applogger.Duration("duration_ms", time.Since(start)),
			}
			switch {
			case status >= 500:
				l.Error("http request failed", fields...)
			case status >= 400:
				l.Warn("http request rejected", fields...)
			default:
				l.Debug("http request", fields...)
			}
			return nil
		}
	}
}
