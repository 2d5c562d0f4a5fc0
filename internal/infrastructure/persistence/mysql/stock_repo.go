package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookshop/internal/domain/stock"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// stockRepository 库存仓储实现(MySQL)
// 并发说明：天真的"SELECT库存再UPDATE"在两个补货并发打到同一行时，
// 各自读到旧数量后互相覆盖（丢失更新）。这里锁定读+原子增量更新，
// 行锁从LockByStoreAndBook保持到事务结束，竞争的补货只能排队累加。
type stockRepository struct {
	db *gorm.DB
}

// NewStockRepository 创建库存仓储
func NewStockRepository(db *gorm.DB) stock.Repository {
	return &stockRepository{db: db}
}

// LockByStoreAndBook 悲观锁查询库存行
// SELECT * FROM stock WHERE store_id = ? AND book_id = ? FOR UPDATE
// 必须在事务内调用；其他事务要等当前事务COMMIT或ROLLBACK后才能读同一行
func (r *stockRepository) LockByStoreAndBook(ctx context.Context, storeID, bookID uint) (*stock.Stock, error) {
	var model StockModel
	err := getDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("store_id = ? AND book_id = ?", storeID, bookID).
		First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, stock.ErrStockNotFound
		}
		return nil, apperrors.Wrap(err, "lock stock failed")
	}

	return toStockEntity(&model), nil
}

// Create 插入新库存行（首次补货）
// 并发的首次插入撞上(store_id,book_id)唯一索引时转为约束冲突错误，
// 事务回滚后由调用方决定是否重试
func (r *stockRepository) Create(ctx context.Context, s *stock.Stock) error {
	model := &StockModel{
		StoreID:           s.StoreID,
		BookID:            s.BookID,
		QuantityAvailable: s.QuantityAvailable,
		LastUpdated:       s.LastUpdated,
	}

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return &apperrors.AppError{
				Code:    apperrors.ErrCodeConstraint,
				Message: "stock row already exists",
				Err:     err,
			}
		}
		return apperrors.Wrap(err, "insert stock failed")
	}

	s.ID = model.ID
	return nil
}

// AddQuantity 原子增量更新数量并刷新时间戳
// UPDATE stock SET quantity_available = quantity_available + ?, last_updated = ? WHERE id = ?
// 增量在SQL里完成，绝不用内存值覆盖
func (r *stockRepository) AddQuantity(ctx context.Context, stockID uint, delta int, lastUpdated string) error {
	result := getDB(ctx, r.db).Model(&StockModel{}).
		Where("id = ?", stockID).
		Updates(map[string]interface{}{
			"quantity_available": gorm.Expr("quantity_available + ?", delta),
			"last_updated":       lastUpdated,
		})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "update stock failed")
	}
	// 调用方只在锁定读命中后才走到这里；命中0行说明事务内行凭空消失，
	// 是内部不变量被破坏，按服务端错误上报而不是当成库存不存在
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.ErrCodeInternal, "stock row disappeared during update")
	}
	return nil
}

// toStockEntity GORM模型 → 领域实体
func toStockEntity(model *StockModel) *stock.Stock {
	return &stock.Stock{
		ID:                model.ID,
		StoreID:           model.StoreID,
		BookID:            model.BookID,
		QuantityAvailable: model.QuantityAvailable,
		LastUpdated:       model.LastUpdated,
	}
}
