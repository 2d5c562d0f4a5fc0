package stock

import (
	"time"
)

// DateLayout 库存时间戳的持久化格式（DD-MM-YYYY文本）
// 注意：这是沿用既有表结构的兼容性约定，不是设计推荐
const DateLayout = "02-01-2006"

// Stock 库存实体
// 不变量：每个(门店,图书)组合至多一行；QuantityAvailable非负，
// 只能由补货命令按增量调整，绝不允许盲目覆盖
type Stock struct {
	ID                uint
	StoreID           uint
	BookID            uint
	QuantityAvailable int
	LastUpdated       string // DD-MM-YYYY
}

// NewStock 创建新库存行（首次补货时惰性创建）
func NewStock(storeID, bookID uint, quantity int) *Stock {
	return &Stock{
		StoreID:           storeID,
		BookID:            bookID,
		QuantityAvailable: quantity,
		LastUpdated:       Today(),
	}
}

// Today 当前日期的持久化表示
func Today() string {
	return time.Now().Format(DateLayout)
}
