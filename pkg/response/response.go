package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// 响应约定（与既有客户端兼容，字段名是外部契约的一部分）：
// - 写命令成功：{"status":"success"}，新增资源返回201，更新返回200
// - 查询成功：直接返回行数组（不包一层envelope）
// - 失败：{"error":"..."}，状态码由AppError.HTTPStatus()决定
//
// 设计说明：
// 内部错误（AppError.Err）只进日志，响应里永远是脱敏后的Message。
// 数据库驱动的原始错误文本绝不能原样转发给客户端。

// statusBody 写命令成功响应体
type statusBody struct {
	Status string `json:"status"`
}

// errorBody 错误响应体
type errorBody struct {
	Error string `json:"error"`
}

// Created 写命令成功，资源已创建（201）
func Created(c *gin.Context) {
	c.JSON(http.StatusCreated, statusBody{Status: "success"})
}

// OK 写命令成功，资源已更新（200）
func OK(c *gin.Context) {
	c.JSON(http.StatusOK, statusBody{Status: "success"})
}

// List 查询成功，返回行数组
// rows为nil时返回空数组而非null，方便客户端遍历
func List(c *gin.Context, rows interface{}) {
	if rows == nil {
		rows = []struct{}{}
	}
	c.JSON(http.StatusOK, rows)
}

// Error 错误响应（自动处理AppError）
// 用法：
//
//	result, err := useCase.Execute(...)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)

	// 详细错误（含内部错误）只记录到日志
	if logger := loggerFrom(c); logger != nil {
		logger.Warn("request failed",
			zap.Int("code", appErr.Code),
			zap.String("message", appErr.Message),
			zap.Error(appErr.Err),
		)
	}

	c.JSON(appErr.HTTPStatus(), errorBody{Error: appErr.Message})
}

// ErrorWithStatus 自定义状态码和消息（参数绑定失败等场景）
func ErrorWithStatus(c *gin.Context, status int, message string) {
	c.JSON(status, errorBody{Error: message})
}

// loggerKey 日志中间件注入zap logger使用的context key
const loggerKey = "logger"

// WithLogger 将zap logger注入gin context，供Error记录内部错误
func WithLogger(c *gin.Context, logger *zap.Logger) {
	c.Set(loggerKey, logger)
}

func loggerFrom(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if logger, ok := v.(*zap.Logger); ok {
			return logger
		}
	}
	return nil
}
