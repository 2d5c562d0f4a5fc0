package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	appaccount "github.com/xiebiao/bookshop/internal/application/account"
	appcatalog "github.com/xiebiao/bookshop/internal/application/catalog"
	appstock "github.com/xiebiao/bookshop/internal/application/stock"
	appwishlist "github.com/xiebiao/bookshop/internal/application/wishlist"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookshop/internal/interface/http/handler"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/circuitbreaker"
	"github.com/xiebiao/bookshop/pkg/logger"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/mq"
	"github.com/xiebiao/bookshop/pkg/response"
)

// main 主程序入口（手动依赖注入；wire.go提供等价的编译期注入版本）
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// 2. 初始化日志
	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zapLogger.Sync()

	// 3. 初始化指标
	metrics.InitMetrics()

	// 4. 初始化数据库连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		zapLogger.Fatal("init database failed", zap.Error(err))
	}

	// 5. 目录缓存（可选）
	var catalogCache appcatalog.Cache
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(cfg)
		if err != nil {
			zapLogger.Fatal("init redis failed", zap.Error(err))
		}
		catalogCache = redis.NewCatalogCache(redisClient, cfg.Redis.CacheTTL)
	}

	// 缓存熔断器：Redis故障时目录查询直接回源数据库
	cacheBreaker := newCacheBreaker(zapLogger)

	// 6. 事件发布者（可选）
	var publisher mq.Publisher = mq.NoopPublisher{}
	if cfg.MQ.Enabled {
		amqpPublisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
		if err != nil {
			zapLogger.Fatal("init mq publisher failed", zap.Error(err))
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	}

	// 7. 依赖注入（手动组装）
	// Repository ← UseCase ← Handler

	// 基础设施层
	bookRepo := mysql.NewBookRepository(db)
	storeRepo := mysql.NewStoreRepository(db)
	stockRepo := mysql.NewStockRepository(db)
	userRepo := mysql.NewUserRepository(db)
	wishlistRepo := mysql.NewWishlistRepository(db)
	reviewRepo := mysql.NewReviewRepository(db)
	txManager := mysql.NewTxManager(db)

	// 应用层
	listBooksUseCase := appcatalog.NewListBooksUseCase(bookRepo, catalogCache, cacheBreaker, zapLogger)
	listReviewsUseCase := appcatalog.NewListReviewsUseCase(reviewRepo, catalogCache, cacheBreaker, zapLogger)
	addToWishlistUseCase := appwishlist.NewAddToWishlistUseCase(userRepo, bookRepo, wishlistRepo, txManager, publisher, zapLogger)
	upsertStockUseCase := appstock.NewUpsertStockUseCase(bookRepo, storeRepo, stockRepo, txManager, publisher, zapLogger)
	changePasswordUseCase := appaccount.NewChangePasswordUseCase(userRepo, txManager)

	// 接口层
	catalogHandler := handler.NewCatalogHandler(listBooksUseCase, listReviewsUseCase)
	wishlistHandler := handler.NewWishlistHandler(addToWishlistUseCase)
	stockHandler := handler.NewStockHandler(upsertStockUseCase)
	accountHandler := handler.NewAccountHandler(changePasswordUseCase)

	// 8. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.Logger(zapLogger), middleware.Metrics(), gin.Recovery())

	registerRoutes(r, catalogHandler, wishlistHandler, stockHandler, accountHandler)

	// 9. 启动服务（优雅停机：收到信号后先排空在途请求再退出）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		zapLogger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("shutdown failed", zap.Error(err))
	}
}

// newCacheBreaker 目录缓存的熔断器
func newCacheBreaker(zapLogger *zap.Logger) *circuitbreaker.CircuitBreaker {
	cb := circuitbreaker.New("catalog-cache", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	cb.OnStateChange(func(name string, from, to circuitbreaker.State) {
		zapLogger.Warn("circuit breaker state changed",
			zap.String("name", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
		metrics.SetBreakerState(name, int(to))
	})
	return cb
}

// registerRoutes 注册路由
// 路径和字段名是既有客户端的外部契约（/api/Books等大写开头的路径不能改）
func registerRoutes(
	r *gin.Engine,
	catalogHandler *handler.CatalogHandler,
	wishlistHandler *handler.WishlistHandler,
	stockHandler *handler.StockHandler,
	accountHandler *handler.AccountHandler,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "healthy"})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	{
		// 只读命令（单条参数化查询，不开写事务）
		api.GET("/Books", catalogHandler.ListBooks)
		api.GET("/Reviews", catalogHandler.ListReviews)

		// 写命令（经TxManager的事务执行）
		api.POST("/Wishlist", wishlistHandler.AddToWishlist)
		api.POST("/Stock", stockHandler.UpsertStock)
		api.PUT("/User/Account", accountHandler.ChangePassword)
	}

	// 未匹配路由统一JSON响应
	r.NoRoute(func(c *gin.Context) {
		response.ErrorWithStatus(c, http.StatusNotFound, "route not found")
	})
}
