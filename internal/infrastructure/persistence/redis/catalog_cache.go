package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/review"
)

// CatalogCache 目录查询缓存（Cache-Aside）
// 设计说明：
// 1. 图书与书评从本服务视角都是只读的（由后台流程维护），
//    短TTL的旁路缓存不会产生一致性问题
// 2. 缓存未命中返回(nil, nil)，调用方回源数据库
// 3. Key包含全部查询参数，避免不同过滤条件之间串数据
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache 创建目录缓存
func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{client: client, ttl: ttl}
}

// GetBooks 获取图书列表缓存，未命中返回(nil, nil)
func (c *CatalogCache) GetBooks(ctx context.Context, filter book.Filter) ([]*book.Book, error) {
	val, err := c.client.Get(ctx, bookListKey(filter)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("get cache: %w", err)
	}

	var books []*book.Book
	if err := json.Unmarshal([]byte(val), &books); err != nil {
		return nil, fmt.Errorf("unmarshal cached books: %w", err)
	}
	return books, nil
}

// SetBooks 写入图书列表缓存
func (c *CatalogCache) SetBooks(ctx context.Context, filter book.Filter, books []*book.Book) error {
	val, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("marshal books: %w", err)
	}
	if err := c.client.Set(ctx, bookListKey(filter), val, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cache: %w", err)
	}
	return nil
}

// GetReviews 获取书评列表缓存，未命中返回(nil, nil)
func (c *CatalogCache) GetReviews(ctx context.Context, keyword string) ([]*review.Review, error) {
	val, err := c.client.Get(ctx, reviewListKey(keyword)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("get cache: %w", err)
	}

	var reviews []*review.Review
	if err := json.Unmarshal([]byte(val), &reviews); err != nil {
		return nil, fmt.Errorf("unmarshal cached reviews: %w", err)
	}
	return reviews, nil
}

// SetReviews 写入书评列表缓存
func (c *CatalogCache) SetReviews(ctx context.Context, keyword string, reviews []*review.Review) error {
	val, err := json.Marshal(reviews)
	if err != nil {
		return fmt.Errorf("marshal reviews: %w", err)
	}
	if err := c.client.Set(ctx, reviewListKey(keyword), val, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cache: %w", err)
	}
	return nil
}

// bookListKey 格式：catalog:books:{author}:{title keyword}
func bookListKey(filter book.Filter) string {
	return fmt.Sprintf("catalog:books:%s:%s", filter.Author, filter.TitleKeyword)
}

// reviewListKey 格式：catalog:reviews:{keyword}
func reviewListKey(keyword string) string {
	return fmt.Sprintf("catalog:reviews:%s", keyword)
}
