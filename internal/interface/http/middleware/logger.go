package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/pkg/response"
)

// Logger 请求日志中间件
// 1. 为每个请求生成唯一的请求ID（写回X-Request-ID响应头，便于排查）
// 2. 记录方法、路径、状态码、耗时、客户端IP
// 3. 把带request_id的logger注入gin context，
//    后续的错误响应用它记录内部错误详情（详情只进日志不进响应）
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		c.Header("X-Request-ID", requestID)

		reqLogger := logger.With(zap.String("request_id", requestID))
		response.WithLogger(c, reqLogger)

		start := time.Now()
		c.Next()

		reqLogger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
