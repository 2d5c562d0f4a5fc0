package handler

import (
	"github.com/gin-gonic/gin"

	appcatalog "github.com/xiebiao/bookshop/internal/application/catalog"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/pkg/response"
)

// CatalogHandler 目录查询HTTP处理器（只读命令）
type CatalogHandler struct {
	listBooksUseCase   *appcatalog.ListBooksUseCase
	listReviewsUseCase *appcatalog.ListReviewsUseCase
}

// NewCatalogHandler 创建目录处理器
func NewCatalogHandler(
	listBooksUseCase *appcatalog.ListBooksUseCase,
	listReviewsUseCase *appcatalog.ListReviewsUseCase,
) *CatalogHandler {
	return &CatalogHandler{
		listBooksUseCase:   listBooksUseCase,
		listReviewsUseCase: listReviewsUseCase,
	}
}

// ListBooks 查询图书列表
// @Summary      查询图书
// @Description  按作者精确匹配或书名关键词模糊匹配查询图书；两个条件最多取一个，都不传返回全部
// @Tags         目录
// @Produce      json
// @Param        Author query string false "作者（精确匹配，优先）"
// @Param        Title%20Keyword query string false "书名关键词（子串匹配）"
// @Success      200 {array} dto.BookRow
// @Failure      500 {object} map[string]string
// @Router       /api/Books [get]
func (h *CatalogHandler) ListBooks(c *gin.Context) {
	filter := book.Filter{
		Author:       c.Query("Author"),
		TitleKeyword: c.Query("Title Keyword"),
	}

	books, err := h.listBooksUseCase.Execute(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	rows := make([]dto.BookRow, len(books))
	for i, b := range books {
		rows[i] = dto.BookRow{
			ID:     b.ID,
			Title:  b.Title,
			Author: b.Author,
		}
	}
	response.List(c, rows)
}

// ListReviews 查询书评列表
// @Summary      查询书评
// @Description  按书名关键词查询书评，不传Keyword返回全部
// @Tags         目录
// @Produce      json
// @Param        Keyword query string false "书名关键词（子串匹配）"
// @Success      200 {array} dto.ReviewRow
// @Failure      500 {object} map[string]string
// @Router       /api/Reviews [get]
func (h *CatalogHandler) ListReviews(c *gin.Context) {
	reviews, err := h.listReviewsUseCase.Execute(c.Request.Context(), c.Query("Keyword"))
	if err != nil {
		response.Error(c, err)
		return
	}

	rows := make([]dto.ReviewRow, len(reviews))
	for i, r := range reviews {
		rows[i] = dto.ReviewRow{
			ID:        r.ID,
			BookTitle: r.BookTitle,
			Review:    r.Review,
		}
	}
	response.List(c, rows)
}
