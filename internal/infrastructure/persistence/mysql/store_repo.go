package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/domain/store"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// storeRepository 门店仓储实现(MySQL)
type storeRepository struct {
	db *gorm.DB
}

// NewStoreRepository 创建门店仓储
func NewStoreRepository(db *gorm.DB) store.Repository {
	return &storeRepository{db: db}
}

// FindIDByName 根据门店名查找门店ID
func (r *storeRepository) FindIDByName(ctx context.Context, name string) (uint, error) {
	var model StoreModel
	err := getDB(ctx, r.db).Select("id").Where("name = ?", name).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, store.ErrStoreNotFound
		}
		return 0, apperrors.Wrap(err, "query store failed")
	}

	return model.ID, nil
}
