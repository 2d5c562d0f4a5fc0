package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/domain/book"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// bookRepository 图书仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 数据库特定错误转换为业务错误，原始错误只随AppError.Err进日志
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// FindIDByTitle 根据书名查找图书ID
func (r *bookRepository) FindIDByTitle(ctx context.Context, title string) (uint, error) {
	var model BookModel
	err := getDB(ctx, r.db).Select("id").Where("title = ?", title).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, book.ErrBookNotFound
		}
		return 0, apperrors.Wrap(err, "query book failed")
	}

	return model.ID, nil
}

// FindByTitleAndAuthor 根据书名+作者查找图书
func (r *bookRepository) FindByTitleAndAuthor(ctx context.Context, title, author string) (*book.Book, error) {
	var model BookModel
	err := getDB(ctx, r.db).
		Where("title = ? AND author = ?", title, author).
		First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "query book failed")
	}

	return toBookEntity(&model), nil
}

// List 按条件查询图书列表
// 过滤约定：Author精确匹配优先；否则TitleKeyword做大小写不敏感的子串匹配
// （utf8mb4默认排序规则下LIKE即不区分大小写）；两者都为空返回全部
func (r *bookRepository) List(ctx context.Context, filter book.Filter) ([]*book.Book, error) {
	query := getDB(ctx, r.db).Model(&BookModel{})

	switch {
	case filter.Author != "":
		query = query.Where("author = ?", filter.Author)
	case filter.TitleKeyword != "":
		query = query.Where("title LIKE ?", "%"+escapeLike(filter.TitleKeyword)+"%")
	}

	var models []BookModel
	if err := query.Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "list books failed")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, nil
}

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:     model.ID,
		Title:  model.Title,
		Author: model.Author,
	}
}
