package review

import (
	"context"
)

// Review 书评实体，本服务只读
type Review struct {
	ID        uint
	BookTitle string
	Review    string
}

// Repository 书评仓储接口
type Repository interface {
	// List 按书名关键词查询书评（大小写不敏感子串匹配）
	// keyword为空返回全部
	List(ctx context.Context, keyword string) ([]*Review, error)
}
