package stock

import (
	"context"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// ErrStockNotFound (门店,图书)组合还没有库存行
// 说明：这是内部信号，指示走插入路径，不会暴露给客户端
var ErrStockNotFound = apperrors.New(apperrors.ErrCodeNotFound, "stock row not found")

// Repository 库存仓储接口
// 并发契约：LockByStoreAndBook与AddQuantity必须在同一事务内调用，
// 行锁从锁定读持续到事务结束，防止并发补货互相覆盖（丢失更新）
type Repository interface {
	// LockByStoreAndBook 悲观锁查询库存行（SELECT ... FOR UPDATE）
	// 行不存在时返回ErrStockNotFound
	LockByStoreAndBook(ctx context.Context, storeID, bookID uint) (*Stock, error)

	// Create 插入新库存行（首次补货）
	Create(ctx context.Context, s *Stock) error

	// AddQuantity 原子增量更新数量并刷新时间戳
	// SQL形如：UPDATE stock SET quantity_available = quantity_available + ?, last_updated = ?
	AddQuantity(ctx context.Context, stockID uint, delta int, lastUpdated string) error
}
