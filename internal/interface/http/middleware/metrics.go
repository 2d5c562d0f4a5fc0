package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookshop/pkg/metrics"
)

// Metrics HTTP指标中间件
// path标签用路由模板（c.FullPath），不用原始URL，避免标签基数爆炸。
// 经由metrics包的辅助函数访问指标：InitMetrics未调用时全部空操作
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.AddHTTPInProgress(1)

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.AddHTTPInProgress(-1)
		metrics.ObserveHTTPRequest(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status()),
			time.Since(start).Seconds(),
		)
	}
}
