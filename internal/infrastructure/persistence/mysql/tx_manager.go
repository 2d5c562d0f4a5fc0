package mysql

import (
	"context"

	"gorm.io/gorm"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// txKey 事务DB在context中的key（私有类型，避免碰撞）
type txKey struct{}

// TxManager 事务管理器（命令执行器）
// 设计说明:
// 1. 封装GORM的Transaction方法：fn返回nil时COMMIT，返回error或panic时ROLLBACK
// 2. 连接在每条退出路径上恰好归还一次——成功、命令失败、提交/回滚自身出错、
//    调用方取消，全部由这里统一兜底，单个命令不可能忘记release或重复release
// 3. 事务DB通过context传递（避免全局变量），Repository的getDB从context提取；
//    命令体因此只能在自己拿到的事务句柄里发SQL，也无法把句柄带出事务范围
type TxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction 执行事务
//
// 使用示例:
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    s, err := stockRepo.LockByStoreAndBook(ctx, storeID, bookID)
//	    if err != nil {
//	        return err // 自动回滚
//	    }
//	    return stockRepo.AddQuantity(ctx, s.ID, delta, today) // nil则提交
//	})
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, txKey{}, tx)
		return fn(txCtx)
	})
	if err == nil {
		return nil
	}
	// 命令体报出的业务错误原样传播，由Dispatcher决定对外表示；
	// 其余（获取连接失败、COMMIT/ROLLBACK驱动错误、ctx取消）归为连接类故障
	if apperrors.IsAppError(err) {
		return err
	}
	return &apperrors.AppError{
		Code:    apperrors.ErrCodeConnectionFailure,
		Message: "storage unavailable",
		Err:     err,
	}
}

// getDB 从context获取事务DB，没有则使用默认DB
// 所有Repository的查询都经过这里，保证事务内的操作共用同一个句柄
func getDB(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}
