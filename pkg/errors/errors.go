package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code用于客户端判断错误类型（不要直接暴露HTTP状态码）
// 2. Message是用户友好的提示信息
// 3. Err是内部错误，仅记录到日志，不返回给客户端（防止泄露SQL等敏感信息）
type AppError struct {
	Code    int    `json:"code"`    // 业务错误码
	Message string `json:"message"` // 用户友好的错误提示
	Err     error  `json:"-"`       // 内部错误（不序列化）
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus 业务错误码 → HTTP状态码
// 映射规则：
// - 404xx → 404（资源不存在，响应中指明缺失的实体）
// - 401xx → 401（凭证校验失败）
// - 400xx/409xx → 400（参数错误）
// - 其余（分配冲突、约束冲突、连接失败、未知）→ 500，返回脱敏信息
func (e *AppError) HTTPStatus() int {
	switch {
	case e.Code >= 40400 && e.Code < 40500:
		return http.StatusNotFound
	case e.Code >= 40100 && e.Code < 40200:
		return http.StatusUnauthorized
	case e.Code >= 40000 && e.Code < 41000:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误（如数据库错误、网络错误）
// 用途：将底层错误转换为业务错误，隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 4xxxx: 客户端错误（参数错误、凭证错误、资源不存在）
// - 5xxxx: 服务端错误（数据库异常、并发冲突、连接失败）

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal          = 50000 // 内部错误
	ErrCodeConnectionFailure = 50001 // 连接池耗尽或传输错误
	ErrCodeConstraint        = 50002 // 数据库唯一索引/外键约束冲突
	ErrCodeContention        = 50003 // 标识分配重试耗尽

	// 凭证错误（40100-40199）
	ErrCodeInvalidCredentials = 40100 // 用户名、邮箱或旧密码不匹配

	// 资源错误（40400-40499）
	ErrCodeNotFound      = 40400 // 资源不存在(通用)
	ErrCodeUserNotFound  = 40401 // 用户不存在
	ErrCodeBookNotFound  = 40402 // 图书不存在
	ErrCodeStoreNotFound = 40403 // 门店不存在

	// 参数错误（40900-40999）
	ErrCodeInvalidParams = 40900 // 参数错误
	ErrCodeBindError     = 40901 // 参数绑定失败
)

// =========================================
// 预定义错误（避免每次都New）
// =========================================

var (
	// 系统错误
	ErrInternal             = New(ErrCodeInternal, "internal server error")
	ErrConnectionFailure    = New(ErrCodeConnectionFailure, "storage unavailable")
	ErrConstraintViolation  = New(ErrCodeConstraint, "storage constraint violated")
	ErrAllocationContention = New(ErrCodeContention, "identifier allocation contention")

	// 凭证
	ErrInvalidCredentials = New(ErrCodeInvalidCredentials, "invalid username, email, or old password")

	// 资源不存在
	ErrUserNotFound  = New(ErrCodeUserNotFound, "user not found")
	ErrBookNotFound  = New(ErrCodeBookNotFound, "book not found")
	ErrStoreNotFound = New(ErrCodeStoreNotFound, "store not found")

	// 参数错误
	ErrInvalidParams = New(ErrCodeInvalidParams, "invalid parameters")
	ErrBindError     = New(ErrCodeBindError, "malformed request body")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "internal server error")
}
