package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookshop/internal/domain/user"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// userRepository 用户仓储实现（MySQL）
// 凭证校验说明：用户名、邮箱、旧密码在一条WHERE里同时匹配，
// 而不是逐字段查三次——逐字段检查会通过响应差异泄露哪个字段错了，
// 且三次读之间没有原子性保证
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{db: db}
}

// Exists 用户名是否存在
func (r *userRepository) Exists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := getDB(ctx, r.db).Model(&UserModel{}).
		Where("username = ?", username).
		Count(&count).Error

	if err != nil {
		return false, apperrors.Wrap(err, "query user failed")
	}
	return count > 0, nil
}

// FindByCredentials 按用户名+邮箱+密码的单一谓词锁定读
// SELECT ... WHERE username = ? AND email = ? AND password = ? FOR UPDATE
// 必须在事务内调用，行锁保持到提交，期间并发的修改只能排队
func (r *userRepository) FindByCredentials(ctx context.Context, username, email, password string) (*user.User, error) {
	var model UserModel
	err := getDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("username = ? AND email = ? AND password = ?", username, email, password).
		First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(err, "query user failed")
	}

	return &user.User{
		Username: model.Username,
		Email:    model.Email,
		Password: model.Password,
	}, nil
}

// UpdatePassword 更新密码，按用户名+邮箱再次匹配
// 和FindByCredentials共处一个事务时，WHERE条件不可能落空；
// RowsAffected=0仍然兜底返回凭证错误，防止单独误用。
// 依赖DSN里的clientFoundRows=true：RowsAffected按命中行数计算，
// 新旧密码相同的UPDATE（改动0行）才不会被误判成凭证错误
func (r *userRepository) UpdatePassword(ctx context.Context, username, email, newPassword string) error {
	result := getDB(ctx, r.db).Model(&UserModel{}).
		Where("username = ? AND email = ?", username, email).
		Update("password", newPassword)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "update password failed")
	}
	if result.RowsAffected == 0 {
		return user.ErrInvalidCredentials
	}
	return nil
}
