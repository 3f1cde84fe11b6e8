package middleware

import (
	"complaint_desk_go/logger"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// RequestLogger writes one structured line per request through the shared zap logger
func RequestLogger() echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.RequestID != "" {
				fields = append(fields, zap.String("request_id", v.RequestID))
			}
			if user := GetCurrentUser(c); user != nil {
				fields = append(fields, zap.String("user_id", user.ID))
			}

			switch {
			case v.Error != nil:
				logger.Log.Error("request failed", append(fields, zap.Error(v.Error))...)
			case v.Status >= 500:
				logger.Log.Error("request", fields...)
			case v.Status >= 400:
				logger.Log.Warn("request", fields...)
			default:
				logger.Log.Info("request", fields...)
			}
			return nil
		},
	})
}
