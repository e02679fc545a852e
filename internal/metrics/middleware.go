package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// Middleware collects HTTP request metrics for every echo route.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			// Use the route pattern, not the raw path, to keep cardinality bounded.
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}

			HTTPRequestsTotal.WithLabelValues(
				c.Request().Method,
				path,
				strconv.Itoa(status),
			).Inc()

			HTTPRequestDuration.WithLabelValues(
				c.Request().Method,
				path,
			).Observe(time.Since(start).Seconds())

			return err
		}
	}
}
