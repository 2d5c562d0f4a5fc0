package book

import (
	"context"
)

// Filter 图书列表查询条件
// 约定：最多应用一个条件，Author优先；两者都为空则返回全部图书
type Filter struct {
	Author       string // 作者精确匹配
	TitleKeyword string // 书名子串匹配（大小写不敏感）
}

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 便于Mock测试,不依赖具体数据库实现
type Repository interface {
	// FindIDByTitle 根据书名查找图书ID
	// 不存在时返回ErrBookNotFound
	FindIDByTitle(ctx context.Context, title string) (uint, error)

	// FindByTitleAndAuthor 根据书名+作者查找图书
	// 不存在时返回ErrBookNotFound
	FindByTitleAndAuthor(ctx context.Context, title, author string) (*Book, error)

	// List 按条件查询图书列表
	List(ctx context.Context, filter Filter) ([]*Book, error)
}
