package wishlist

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/domain/wishlist"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/mq"
)

// Transactor 事务执行器（由mysql.TxManager实现）
// fn返回nil时提交，返回error时回滚；连接在每条退出路径上归还一次
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// maxAllocAttempts 标识分配的最大尝试次数
// FOR UPDATE串行化后冲突本不该发生，重试只是唯一索引兜底后的恢复手段
const maxAllocAttempts = 3

// AddToWishlistUseCase 加入心愿单用例
// 不变量：
// 1. 用户或图书校验失败时，事务零写入（原子性）
// 2. 并发执行N次产生N个互不相同的条目ID
type AddToWishlistUseCase struct {
	userRepo     user.Repository
	bookRepo     book.Repository
	wishlistRepo wishlist.Repository
	txManager    Transactor
	publisher    mq.Publisher
	logger       *zap.Logger
}

// NewAddToWishlistUseCase 创建加入心愿单用例
func NewAddToWishlistUseCase(
	userRepo user.Repository,
	bookRepo book.Repository,
	wishlistRepo wishlist.Repository,
	txManager Transactor,
	publisher mq.Publisher,
	logger *zap.Logger,
) *AddToWishlistUseCase {
	return &AddToWishlistUseCase{
		userRepo:     userRepo,
		bookRepo:     bookRepo,
		wishlistRepo: wishlistRepo,
		txManager:    txManager,
		publisher:    publisher,
		logger:       logger,
	}
}

// AddToWishlistRequest 加入心愿单请求DTO
type AddToWishlistRequest struct {
	Username  string
	Author    string
	BookTitle string
}

// EntryAddedEvent 心愿单条目创建事件（提交后发布）
type EntryAddedEvent struct {
	EntryID   uint   `json:"entry_id"`
	Username  string `json:"username"`
	BookTitle string `json:"book_title"`
	Author    string `json:"author"`
}

// Execute 执行加入心愿单
//
// 事务内流程：
// 1. 校验用户存在
// 2. 校验(书名,作者)对应的图书存在
// 3. 分配条目ID（FOR UPDATE的MAX读，见wishlistRepository.NextID）
// 4. 插入条目；撞上ID唯一索引则在同一事务内重新分配，有限次重试
//
// 任一步出错整个事务回滚，心愿单零净写入
func (uc *AddToWishlistUseCase) Execute(ctx context.Context, req AddToWishlistRequest) error {
	start := time.Now()

	var created *wishlist.Entry
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		exists, err := uc.userRepo.Exists(txCtx, req.Username)
		if err != nil {
			return err
		}
		if !exists {
			return user.ErrUserNotFound
		}

		if _, err := uc.bookRepo.FindByTitleAndAuthor(txCtx, req.BookTitle, req.Author); err != nil {
			return err
		}

		for attempt := 0; attempt < maxAllocAttempts; attempt++ {
			id, err := uc.wishlistRepo.NextID(txCtx)
			if err != nil {
				return err
			}

			entry := wishlist.NewEntry(id, req.Username, req.BookTitle)
			err = uc.wishlistRepo.Create(txCtx, entry)
			if err == nil {
				created = entry
				return nil
			}
			if !errors.Is(err, wishlist.ErrDuplicateID) {
				return err
			}
			metrics.IncAllocatorRetry()
		}
		return wishlist.ErrAllocationContention
	})

	metrics.ObserveCommand("add_to_wishlist", time.Since(start).Seconds(), err)
	if err != nil {
		return err
	}

	// 事件发布在事务之外：发布失败只记日志，不影响已提交的写入
	if pubErr := uc.publisher.Publish(ctx, "wishlist.added", EntryAddedEvent{
		EntryID:   created.ID,
		Username:  created.Username,
		BookTitle: created.BookTitle,
		Author:    req.Author,
	}); pubErr != nil {
		metrics.IncPublish("wishlist.added", false)
		uc.logger.Warn("publish wishlist.added failed", zap.Error(pubErr))
	} else {
		metrics.IncPublish("wishlist.added", true)
	}

	return nil
}
