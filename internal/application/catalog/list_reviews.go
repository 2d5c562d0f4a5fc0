package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/domain/review"
	"github.com/xiebiao/bookshop/pkg/circuitbreaker"
	"github.com/xiebiao/bookshop/pkg/metrics"
)

// ListReviewsUseCase 书评列表查询用例
// 只读命令，不开写事务；缓存策略同ListBooksUseCase
type ListReviewsUseCase struct {
	reviewRepo review.Repository
	cache      Cache
	breaker    *circuitbreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewListReviewsUseCase 创建书评列表用例
func NewListReviewsUseCase(
	reviewRepo review.Repository,
	cache Cache,
	breaker *circuitbreaker.CircuitBreaker,
	logger *zap.Logger,
) *ListReviewsUseCase {
	return &ListReviewsUseCase{
		reviewRepo: reviewRepo,
		cache:      cache,
		breaker:    breaker,
		logger:     logger,
	}
}

// Execute 按书名关键词查询书评，keyword为空返回全部
func (uc *ListReviewsUseCase) Execute(ctx context.Context, keyword string) ([]*review.Review, error) {
	if uc.cache != nil {
		var cached []*review.Review
		err := uc.breaker.Execute(func() error {
			var err error
			cached, err = uc.cache.GetReviews(ctx, keyword)
			return err
		})
		switch {
		case err != nil:
			metrics.IncCacheRequest("error")
			uc.logger.Debug("review list cache read failed", zap.Error(err))
		case cached != nil:
			metrics.IncCacheRequest("hit")
			return cached, nil
		default:
			metrics.IncCacheRequest("miss")
		}
	} else {
		metrics.IncCacheRequest("bypass")
	}

	reviews, err := uc.reviewRepo.List(ctx, keyword)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.breaker.Execute(func() error {
			return uc.cache.SetReviews(ctx, keyword, reviews)
		}); err != nil {
			uc.logger.Debug("review list cache write failed", zap.Error(err))
		}
	}

	return reviews, nil
}
