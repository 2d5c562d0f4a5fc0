package stock

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/stock"
	"github.com/xiebiao/bookshop/internal/domain/store"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/mq"
)

// Transactor 事务执行器（由mysql.TxManager实现）
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UpsertStockUseCase 补货用例（插入或累加库存）
//
// 核心问题：丢失更新
// 场景：同一(门店,图书)的两次补货并发执行
// 错误实现：
//  1. SELECT读到数量5
//  2. 两个请求各自计算5+3、5+4
//  3. 先后UPDATE覆盖 → 最终8或9，丢了一次补货
//
// 正确实现：悲观锁
//  1. SELECT FOR UPDATE锁定库存行
//  2. SQL内原子增量（quantity_available + ?）
//  3. COMMIT释放锁，竞争者排队后在新值上累加
//
// 注意：重复提交同一请求会叠加库存（按设计不幂等）；
// 需要幂等重试的调用方要自带去重令牌，本契约不提供
type UpsertStockUseCase struct {
	bookRepo  book.Repository
	storeRepo store.Repository
	stockRepo stock.Repository
	txManager Transactor
	publisher mq.Publisher
	logger    *zap.Logger
}

// NewUpsertStockUseCase 创建补货用例
func NewUpsertStockUseCase(
	bookRepo book.Repository,
	storeRepo store.Repository,
	stockRepo stock.Repository,
	txManager Transactor,
	publisher mq.Publisher,
	logger *zap.Logger,
) *UpsertStockUseCase {
	return &UpsertStockUseCase{
		bookRepo:  bookRepo,
		storeRepo: storeRepo,
		stockRepo: stockRepo,
		txManager: txManager,
		publisher: publisher,
		logger:    logger,
	}
}

// UpsertStockRequest 补货请求DTO
// Quantity必须为正整数（只支持增量补货，不支持直接改值或扣减）
type UpsertStockRequest struct {
	BookTitle string
	StoreName string
	Quantity  int
}

// UpsertStockResponse 补货响应DTO
type UpsertStockResponse struct {
	NewQuantity int
}

// StockReplenishedEvent 补货完成事件（提交后发布）
type StockReplenishedEvent struct {
	StoreName   string `json:"store_name"`
	BookTitle   string `json:"book_title"`
	Delta       int    `json:"delta"`
	NewQuantity int    `json:"new_quantity"`
}

// Execute 执行补货
//
// 事务内流程：
// 1. 书名 → 图书ID（不存在 → book not found）
// 2. 门店名 → 门店ID（不存在 → store not found）
// 3. FOR UPDATE锁定(门店,图书)库存行
// 4. 行存在：原子累加数量并刷新时间戳；行不存在：插入数量=增量的新行
func (uc *UpsertStockUseCase) Execute(ctx context.Context, req UpsertStockRequest) (*UpsertStockResponse, error) {
	start := time.Now()

	if req.Quantity <= 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "Quantity must be a positive integer")
	}

	var newQuantity int
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		bookID, err := uc.bookRepo.FindIDByTitle(txCtx, req.BookTitle)
		if err != nil {
			return err
		}

		storeID, err := uc.storeRepo.FindIDByName(txCtx, req.StoreName)
		if err != nil {
			return err
		}

		existing, err := uc.stockRepo.LockByStoreAndBook(txCtx, storeID, bookID)
		switch {
		case err == nil:
			// 行锁已持有，锁定读的旧值+增量不会被并发写穿插
			if err := uc.stockRepo.AddQuantity(txCtx, existing.ID, req.Quantity, stock.Today()); err != nil {
				return err
			}
			newQuantity = existing.QuantityAvailable + req.Quantity
			return nil

		case errors.Is(err, stock.ErrStockNotFound):
			// 首次补货，惰性创建库存行
			fresh := stock.NewStock(storeID, bookID, req.Quantity)
			if err := uc.stockRepo.Create(txCtx, fresh); err != nil {
				return err
			}
			newQuantity = req.Quantity
			return nil

		default:
			return err
		}
	})

	metrics.ObserveCommand("upsert_stock", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, err
	}

	if pubErr := uc.publisher.Publish(ctx, "stock.replenished", StockReplenishedEvent{
		StoreName:   req.StoreName,
		BookTitle:   req.BookTitle,
		Delta:       req.Quantity,
		NewQuantity: newQuantity,
	}); pubErr != nil {
		metrics.IncPublish("stock.replenished", false)
		uc.logger.Warn("publish stock.replenished failed", zap.Error(pubErr))
	} else {
		metrics.IncPublish("stock.replenished", true)
	}

	return &UpsertStockResponse{NewQuantity: newQuantity}, nil
}
