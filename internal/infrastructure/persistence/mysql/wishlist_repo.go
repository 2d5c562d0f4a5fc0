package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/domain/wishlist"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// wishlistRepository 心愿单仓储实现(MySQL)
// 标识分配说明：裸的"SELECT MAX(id)+1再INSERT"在并发下会分配出重复ID。
// 这里的防线有两层：
// 1. MAX扫描带FOR UPDATE——InnoDB锁住主键索引末尾的间隙，
//    并发分配器的MAX读被串行化，正常情况下拿不到同一个值
// 2. 主键唯一索引兜底——万一仍然撞上（如锁降级、隔离级别变化），
//    Create返回ErrDuplicateID，由用例层在同一命令内有限重试
type wishlistRepository struct {
	db *gorm.DB
}

// NewWishlistRepository 创建心愿单仓储
func NewWishlistRepository(db *gorm.DB) wishlist.Repository {
	return &wishlistRepository{db: db}
}

// NextID 在当前事务内分配下一个条目ID
// SELECT COALESCE(MAX(id), 0) + 1 FROM wishlist FOR UPDATE
func (r *wishlistRepository) NextID(ctx context.Context) (uint, error) {
	var next uint
	err := getDB(ctx, r.db).
		Raw("SELECT COALESCE(MAX(id), 0) + 1 FROM wishlist FOR UPDATE").
		Scan(&next).Error

	if err != nil {
		return 0, apperrors.Wrap(err, "allocate wishlist id failed")
	}
	return next, nil
}

// Create 插入心愿单条目
func (r *wishlistRepository) Create(ctx context.Context, e *wishlist.Entry) error {
	model := &WishlistModel{
		ID:        e.ID,
		Username:  e.Username,
		BookTitle: e.BookTitle,
		CreatedAt: e.CreatedAt,
	}

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return wishlist.ErrDuplicateID
		}
		return apperrors.Wrap(err, "insert wishlist entry failed")
	}
	return nil
}
