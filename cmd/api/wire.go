//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明：
// 1. Wire是Google开发的编译期依赖注入工具
// 2. 与运行时反射注入不同，Wire在编译期生成代码
// 3. 优势：零运行时开销、类型安全、编译期检测循环依赖
//
// Wire工作流程：
// Step 1: 编写wire.go（本文件），定义Providers和Injector
// Step 2: 运行 `wire gen ./cmd/api`
// Step 3: Wire生成wire_gen.go，包含完整的依赖创建代码
// Step 4: main.go调用wire_gen.go中的InitializeApp()

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
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
	"github.com/xiebiao/bookshop/pkg/logger"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/mq"
)

// ========================================
// Wire Provider Sets (依赖分组)
// ========================================

// infrastructureSet 基础设施层依赖
// 包含：配置加载、日志、数据库连接
var infrastructureSet = wire.NewSet(
	config.Load,   // 加载配置文件
	provideLogger, // 创建zap日志器
	mysql.NewDB,   // 创建MySQL连接
)

// repositorySet 仓储层依赖
// 包含：所有Repository的构造函数和事务管理器
// 教学要点：三个应用包各自定义了Transactor接口（消费方定义接口），
// 都由*mysql.TxManager实现，所以需要三条wire.Bind绑定
var repositorySet = wire.NewSet(
	mysql.NewBookRepository,     // 图书仓储
	mysql.NewStoreRepository,    // 门店仓储
	mysql.NewStockRepository,    // 库存仓储
	mysql.NewUserRepository,     // 用户仓储
	mysql.NewWishlistRepository, // 心愿单仓储
	mysql.NewReviewRepository,   // 书评仓储
	mysql.NewTxManager,          // 事务管理器
	wire.Bind(new(appwishlist.Transactor), new(*mysql.TxManager)),
	wire.Bind(new(appstock.Transactor), new(*mysql.TxManager)),
	wire.Bind(new(appaccount.Transactor), new(*mysql.TxManager)),
)

// applicationSet 应用层依赖
// 包含：所有Use Case的构造函数
var applicationSet = wire.NewSet(
	appcatalog.NewListBooksUseCase,      // 图书列表用例
	appcatalog.NewListReviewsUseCase,    // 书评列表用例
	appwishlist.NewAddToWishlistUseCase, // 加入心愿单用例
	appstock.NewUpsertStockUseCase,      // 补货用例
	appaccount.NewChangePasswordUseCase, // 修改密码用例
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewCatalogHandler,  // 目录查询处理器
	handler.NewWishlistHandler, // 心愿单处理器
	handler.NewStockHandler,    // 库存处理器
	handler.NewAccountHandler,  // 账户处理器
)

// ========================================
// Custom Providers (自定义Provider)
// ========================================

// provideLogger 从配置创建zap日志器
// 教学要点：logger.New的参数是三个string而非*config.Config，
// Wire无法自动提取，需要手动编写Provider
func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
}

// provideCatalogCache 按配置创建目录缓存
// Redis未启用时返回nil，用例内部会跳过缓存直接查库
func provideCatalogCache(cfg *config.Config) (appcatalog.Cache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	client, err := redis.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return redis.NewCatalogCache(client, cfg.Redis.CacheTTL), nil
}

// providePublisher 按配置创建事件发布者
// MQ未启用时返回NoopPublisher，写命令提交后的事件发布成为空操作
func providePublisher(cfg *config.Config) (mq.Publisher, error) {
	if !cfg.MQ.Enabled {
		return mq.NoopPublisher{}, nil
	}
	return mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
}

// provideGinEngine 创建并配置Gin引擎
// 教学要点：路由注册复用main.go中的registerRoutes，避免两处维护路由表
func provideGinEngine(
	cfg *config.Config,
	zapLogger *zap.Logger,
	catalogHandler *handler.CatalogHandler,
	wishlistHandler *handler.WishlistHandler,
	stockHandler *handler.StockHandler,
	accountHandler *handler.AccountHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// main.go的手动装配路径在更早处初始化指标；重复调用是空操作
	metrics.InitMetrics()

	r := gin.New()
	r.Use(middleware.Logger(zapLogger), middleware.Metrics(), gin.Recovery())
	registerRoutes(r, catalogHandler, wishlistHandler, stockHandler, accountHandler)
	return r
}

// ========================================
// Wire Injector (依赖注入器)
// ========================================

// InitializeApp 初始化整个应用
// 返回：配置好的Gin引擎
// 错误：如果任何依赖创建失败
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		// 基础设施层
		infrastructureSet,

		// 仓储层
		repositorySet,

		// 应用层
		applicationSet,

		// 缓存与事件发布
		provideCatalogCache,
		providePublisher,
		newCacheBreaker,

		// 接口层
		handlerSet,

		// Gin引擎
		provideGinEngine,
	)
	return nil, nil
}
