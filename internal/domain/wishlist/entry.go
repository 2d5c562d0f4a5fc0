package wishlist

import (
	"context"
	"time"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// DateLayout 创建时间的持久化格式（DD-MM-YYYY文本，沿用既有表结构）
const DateLayout = "02-01-2006"

// Entry 心愿单条目
// 不变量：
// 1. ID单调递增且唯一（并发插入也不允许重复）
// 2. 创建时Username与(BookTitle对应的图书)必须存在
// 3. 只追加，本层从不更新或删除
type Entry struct {
	ID        uint
	Username  string
	BookTitle string
	CreatedAt string // DD-MM-YYYY
}

// NewEntry 创建心愿单条目（ID由分配器在事务内分配）
func NewEntry(id uint, username, bookTitle string) *Entry {
	return &Entry{
		ID:        id,
		Username:  username,
		BookTitle: bookTitle,
		CreatedAt: time.Now().Format(DateLayout),
	}
}

// 心愿单领域错误定义
var (
	// ErrDuplicateID 插入撞上了ID唯一索引（并发分配冲突的信号，触发重试）
	ErrDuplicateID = apperrors.New(apperrors.ErrCodeConstraint, "wishlist id already taken")

	// ErrAllocationContention 重试耗尽仍未分配到唯一ID
	ErrAllocationContention = apperrors.New(apperrors.ErrCodeContention, "identifier allocation contention")
)

// Repository 心愿单仓储接口
// 并发契约：NextID与Create必须在同一事务内调用。
// NextID的锁定读（FOR UPDATE的MAX扫描）串行化并发分配器；
// ID列的唯一索引+有限重试兜底，裸的max+1读写绝不能单独使用。
type Repository interface {
	// NextID 在当前事务内分配下一个条目ID
	NextID(ctx context.Context) (uint, error)

	// Create 插入条目
	// ID已被占用时返回ErrDuplicateID
	Create(ctx context.Context, e *Entry) error
}
