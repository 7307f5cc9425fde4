package middleware

import (
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Logger(logger *zap.Logger) gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		Output: io.Discard,
		Formatter: func(params gin.LogFormatterParams) string {
			fields := []zap.Field{
				zap.String("method", params.Method),
				zap.String("path", params.Path),
				zap.Int("status", params.StatusCode),
				zap.Duration("latency", params.Latency),
				zap.String("client_ip", params.ClientIP),
				zap.String("user_agent", params.Request.UserAgent()),
			}
			if id, ok := params.Keys[RequestIDKey].(string); ok {
				fields = append(fields, zap.String("request_id", id))
			}
			if params.ErrorMessage != "" {
				fields = append(fields, zap.String("error", params.ErrorMessage))
			}

			switch {
			case params.StatusCode >= 500:
				logger.Error("HTTP Request", fields...)
			case params.StatusCode >= 400:
				logger.Warn("HTTP Request", fields...)
			default:
				logger.Info("HTTP Request", fields...)
			}
			return ""
		},
	})
}
