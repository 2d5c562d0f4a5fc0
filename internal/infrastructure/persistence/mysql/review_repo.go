package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/domain/review"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// reviewRepository 书评仓储实现(MySQL)
type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 创建书评仓储
func NewReviewRepository(db *gorm.DB) review.Repository {
	return &reviewRepository{db: db}
}

// List 按书名关键词查询书评
func (r *reviewRepository) List(ctx context.Context, keyword string) ([]*review.Review, error) {
	query := getDB(ctx, r.db).Model(&ReviewModel{})

	if keyword != "" {
		query = query.Where("book_title LIKE ?", "%"+escapeLike(keyword)+"%")
	}

	var models []ReviewModel
	if err := query.Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "list reviews failed")
	}

	reviews := make([]*review.Review, len(models))
	for i := range models {
		reviews[i] = &review.Review{
			ID:        models[i].ID,
			BookTitle: models[i].BookTitle,
			Review:    models[i].Review,
		}
	}
	return reviews, nil
}
