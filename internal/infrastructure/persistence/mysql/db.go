package mysql

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bookshop/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）——
//    连接池是唯一的进程内共享资源，一次命令恰好占用一个连接并归还一次
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. TranslateError开启后，唯一索引冲突统一转为gorm.ErrDuplicatedKey
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// 自动迁移表结构（开发环境）
	// 注意：生产环境应使用专门的迁移工具（如golang-migrate）
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
// AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&BookModel{},
		&StoreModel{},
		&StockModel{},
		&UserModel{},
		&WishlistModel{},
		&ReviewModel{},
	)
}

// =========================================
// GORM模型定义
// =========================================
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. internal/domain下是领域实体，不依赖GORM
// 3. Repository负责两者之间的转换
// 4. 日期列（created_at、last_updated）是DD-MM-YYYY文本，
//    沿用既有表结构的外部格式契约

// BookModel GORM图书模型
// 图书行由后台流程维护，本服务只读
type BookModel struct {
	ID     uint   `gorm:"primaryKey"`
	Title  string `gorm:"index:idx_book_title;size:200;not null"`
	Author string `gorm:"index:idx_book_author;size:100;not null"`
}

func (BookModel) TableName() string {
	return "books"
}

// StoreModel GORM门店模型，本服务只读
type StoreModel struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;size:100;not null"`
}

func (StoreModel) TableName() string {
	return "stores"
}

// StockModel GORM库存模型
// (store_id, book_id)上的复合唯一索引保证每对组合至多一行，
// 并发的首次补货即使同时走插入路径，也只有一个能成功
type StockModel struct {
	ID                uint   `gorm:"primaryKey"`
	StoreID           uint   `gorm:"uniqueIndex:idx_store_book;not null"`
	BookID            uint   `gorm:"uniqueIndex:idx_store_book;not null"`
	QuantityAvailable int    `gorm:"not null;default:0"`
	LastUpdated       string `gorm:"size:10"` // DD-MM-YYYY
}

func (StockModel) TableName() string {
	return "stock"
}

// UserModel GORM用户模型
// 用户名即主键
type UserModel struct {
	Username string `gorm:"primaryKey;size:50"`
	Email    string `gorm:"size:100;not null"`
	Password string `gorm:"size:255;not null"`
}

func (UserModel) TableName() string {
	return "users"
}

// WishlistModel GORM心愿单模型
// ID由分配器在事务内显式分配，不使用数据库自增；
// 主键唯一索引是并发分配冲突的最后防线（撞上即重试）
type WishlistModel struct {
	ID        uint   `gorm:"primaryKey;autoIncrement:false"`
	Username  string `gorm:"index;size:50;not null"`
	BookTitle string `gorm:"size:200;not null"`
	CreatedAt string `gorm:"size:10"` // DD-MM-YYYY
}

func (WishlistModel) TableName() string {
	return "wishlist"
}

// ReviewModel GORM书评模型，本服务只读
type ReviewModel struct {
	ID        uint   `gorm:"primaryKey"`
	BookTitle string `gorm:"index;size:200;not null"`
	Review    string `gorm:"type:text"`
}

func (ReviewModel) TableName() string {
	return "reviews"
}
