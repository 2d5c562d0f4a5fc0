package user

import (
	"context"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// User 用户实体
// 用户名即主键（唯一）。本层只修改Password，其余字段由后台流程维护。
type User struct {
	Username string
	Email    string
	Password string
}

// 用户领域错误定义
var (
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = apperrors.New(apperrors.ErrCodeUserNotFound, "user not found")

	// ErrInvalidCredentials 用户名、邮箱或旧密码不匹配
	// 三个字段在一条过滤读里同时校验，不单独指明哪个错了
	// （逐字段检查会通过响应差异泄露哪个字段不匹配）
	ErrInvalidCredentials = apperrors.New(apperrors.ErrCodeInvalidCredentials, "invalid username, email, or old password")
)

// Repository 用户仓储接口
// 并发契约：FindByCredentials的锁定读与UpdatePassword必须在同一事务内，
// 行锁保持到提交，保证读到的行在写入前不会被并发修改
type Repository interface {
	// Exists 用户名是否存在
	Exists(ctx context.Context, username string) (bool, error)

	// FindByCredentials 按用户名+邮箱+密码的单一谓词锁定读
	// 零行匹配返回ErrInvalidCredentials
	FindByCredentials(ctx context.Context, username, email, password string) (*User, error)

	// UpdatePassword 更新密码，按用户名+邮箱再次匹配
	// 没有行被更新时返回ErrInvalidCredentials
	UpdatePassword(ctx context.Context, username, email, newPassword string) error
}
