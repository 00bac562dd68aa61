package monitoring

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// Middleware records request count, duration and in-flight requests. The route
// pattern (c.Path()) is used as label so ids in URLs do not explode cardinality.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ActiveRequests.Inc()
			defer ActiveRequests.Dec()

			method := c.Request().Method
			timer := prometheus.NewTimer(HttpRequestDuration.WithLabelValues(method, c.Path()))
			err := next(c)
			timer.ObserveDuration()

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			HttpRequestsTotal.WithLabelValues(method, c.Path(), strconv.Itoa(status)).Inc()
			return err
		}
	}
}
