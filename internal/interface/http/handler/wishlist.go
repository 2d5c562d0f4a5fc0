package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appwishlist "github.com/xiebiao/bookshop/internal/application/wishlist"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/pkg/response"
)

// WishlistHandler 心愿单HTTP处理器
type WishlistHandler struct {
	addToWishlistUseCase *appwishlist.AddToWishlistUseCase
}

// NewWishlistHandler 创建心愿单处理器
func NewWishlistHandler(addToWishlistUseCase *appwishlist.AddToWishlistUseCase) *WishlistHandler {
	return &WishlistHandler{
		addToWishlistUseCase: addToWishlistUseCase,
	}
}

// AddToWishlist 加入心愿单
// @Summary      加入心愿单
// @Description  将一本书加入用户心愿单；用户和(书名,作者)对应的图书都必须已存在
// @Tags         心愿单
// @Accept       json
// @Produce      json
// @Param        request body dto.AddToWishlistRequest true "心愿单条目"
// @Success      201 {object} map[string]string
// @Failure      400 {object} map[string]string "参数错误"
// @Failure      404 {object} map[string]string "用户或图书不存在"
// @Router       /api/Wishlist [post]
func (h *WishlistHandler) AddToWishlist(c *gin.Context) {
	var req dto.AddToWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "malformed request body")
		return
	}

	err := h.addToWishlistUseCase.Execute(c.Request.Context(), appwishlist.AddToWishlistRequest{
		Username:  req.Username,
		Author:    req.Author,
		BookTitle: req.BookTitle,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c)
}
