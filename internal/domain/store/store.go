package store

import (
	"context"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// Store 门店实体，由后台管理流程维护，本服务只读
type Store struct {
	ID   uint
	Name string
}

// ErrStoreNotFound 门店不存在
var ErrStoreNotFound = apperrors.New(apperrors.ErrCodeStoreNotFound, "store not found")

// Repository 门店仓储接口
type Repository interface {
	// FindIDByName 根据门店名查找门店ID
	// 不存在时返回ErrStoreNotFound
	FindIDByName(ctx context.Context, name string) (uint, error)
}
