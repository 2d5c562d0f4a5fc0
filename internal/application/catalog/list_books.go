package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/review"
	"github.com/xiebiao/bookshop/pkg/circuitbreaker"
	"github.com/xiebiao/bookshop/pkg/metrics"
)

// Cache 目录缓存接口（由redis.CatalogCache实现）
// 未命中返回(nil, nil)；注入nil表示缓存未启用
type Cache interface {
	GetBooks(ctx context.Context, filter book.Filter) ([]*book.Book, error)
	SetBooks(ctx context.Context, filter book.Filter, books []*book.Book) error
	GetReviews(ctx context.Context, keyword string) ([]*review.Review, error)
	SetReviews(ctx context.Context, keyword string, reviews []*review.Review) error
}

// ListBooksUseCase 图书列表查询用例
// 只读命令：单条参数化查询，不开写事务。
// 缓存经熔断器访问：Redis故障时熔断打开，查询直接回源数据库，
// 不会让目录查询跟着缓存一起失败。
type ListBooksUseCase struct {
	bookRepo book.Repository
	cache    Cache
	breaker  *circuitbreaker.CircuitBreaker
	logger   *zap.Logger
}

// NewListBooksUseCase 创建图书列表用例
func NewListBooksUseCase(
	bookRepo book.Repository,
	cache Cache,
	breaker *circuitbreaker.CircuitBreaker,
	logger *zap.Logger,
) *ListBooksUseCase {
	return &ListBooksUseCase{
		bookRepo: bookRepo,
		cache:    cache,
		breaker:  breaker,
		logger:   logger,
	}
}

// Execute 查询图书列表
// 过滤约定：最多应用一个条件，Author（精确）优先于TitleKeyword（子串）
func (uc *ListBooksUseCase) Execute(ctx context.Context, filter book.Filter) ([]*book.Book, error) {
	if cached, ok := uc.fromCache(ctx, filter); ok {
		return cached, nil
	}

	books, err := uc.bookRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	uc.toCache(ctx, filter, books)
	return books, nil
}

func (uc *ListBooksUseCase) fromCache(ctx context.Context, filter book.Filter) ([]*book.Book, bool) {
	if uc.cache == nil {
		metrics.IncCacheRequest("bypass")
		return nil, false
	}

	var cached []*book.Book
	err := uc.breaker.Execute(func() error {
		var err error
		cached, err = uc.cache.GetBooks(ctx, filter)
		return err
	})
	if err != nil {
		metrics.IncCacheRequest("error")
		uc.logger.Debug("book list cache read failed", zap.Error(err))
		return nil, false
	}
	if cached == nil {
		metrics.IncCacheRequest("miss")
		return nil, false
	}
	metrics.IncCacheRequest("hit")
	return cached, true
}

func (uc *ListBooksUseCase) toCache(ctx context.Context, filter book.Filter, books []*book.Book) {
	if uc.cache == nil {
		return
	}
	if err := uc.breaker.Execute(func() error {
		return uc.cache.SetBooks(ctx, filter, books)
	}); err != nil {
		uc.logger.Debug("book list cache write failed", zap.Error(err))
	}
}
