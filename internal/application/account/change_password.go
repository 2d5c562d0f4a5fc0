package account

import (
	"context"
	"time"

	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/pkg/metrics"
)

// Transactor 事务执行器（由mysql.TxManager实现）
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ChangePasswordUseCase 修改密码用例
// 不变量：写入成功当且仅当紧邻的前置读恰好命中一行
// （用户名+邮箱+旧密码的单一谓词），且读写共处一个事务、
// 行锁从读保持到提交——中间不可能穿插会被覆盖的并发修改
type ChangePasswordUseCase struct {
	userRepo  user.Repository
	txManager Transactor
}

// NewChangePasswordUseCase 创建修改密码用例
func NewChangePasswordUseCase(userRepo user.Repository, txManager Transactor) *ChangePasswordUseCase {
	return &ChangePasswordUseCase{
		userRepo:  userRepo,
		txManager: txManager,
	}
}

// ChangePasswordRequest 修改密码请求DTO
type ChangePasswordRequest struct {
	Username    string
	Email       string
	OldPassword string
	NewPassword string
}

// Execute 执行修改密码
//
// 事务内流程：
// 1. 锁定读：WHERE username AND email AND password（一条过滤读，
//    不逐字段检查——逐字段会通过响应差异泄露哪个字段错了）
// 2. 零行命中 → invalid credentials，回滚，零写入
// 3. 恰好一行 → 按用户名+邮箱再次匹配更新密码
func (uc *ChangePasswordUseCase) Execute(ctx context.Context, req ChangePasswordRequest) error {
	start := time.Now()

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		matched, err := uc.userRepo.FindByCredentials(txCtx, req.Username, req.Email, req.OldPassword)
		if err != nil {
			return err
		}

		return uc.userRepo.UpdatePassword(txCtx, matched.Username, matched.Email, req.NewPassword)
	})

	metrics.ObserveCommand("change_password", time.Since(start).Seconds(), err)
	return err
}
