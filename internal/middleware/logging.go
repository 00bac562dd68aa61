package middleware

import (
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one line per request through log. Server errors are logged
// at error level, everything else at info.
func RequestLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
	return eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"request_id": v.RequestID,
			})
			if id := UserID(c); id != 0 {
				entry = entry.WithField("user_id", id)
			}
			if v.Status >= 500 {
				if v.Error != nil {
					entry = entry.WithError(v.Error)
				}
				entry.Error("request failed")
				return nil
			}
			entry.Info("request")
			return nil
		},
	})
}
