package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appstock "github.com/xiebiao/bookshop/internal/application/stock"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/pkg/response"
)

// StockHandler 库存HTTP处理器
type StockHandler struct {
	upsertStockUseCase *appstock.UpsertStockUseCase
}

// NewStockHandler 创建库存处理器
func NewStockHandler(upsertStockUseCase *appstock.UpsertStockUseCase) *StockHandler {
	return &StockHandler{
		upsertStockUseCase: upsertStockUseCase,
	}
}

// UpsertStock 补货（插入或累加库存）
// @Summary      门店补货
// @Description  为(门店,图书)累加库存；首次补货自动创建库存行。重复提交会叠加，不幂等
// @Tags         库存
// @Accept       json
// @Produce      json
// @Param        request body dto.UpsertStockRequest true "补货信息"
// @Success      201 {object} map[string]string
// @Failure      400 {object} map[string]string "参数错误（Quantity必须为正整数）"
// @Failure      404 {object} map[string]string "图书或门店不存在"
// @Router       /api/Stock [post]
func (h *StockHandler) UpsertStock(c *gin.Context) {
	var req dto.UpsertStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// 非数字Quantity、缺字段、非正数都落在这里
		response.ErrorWithStatus(c, http.StatusBadRequest, "malformed request body")
		return
	}

	_, err := h.upsertStockUseCase.Execute(c.Request.Context(), appstock.UpsertStockRequest{
		BookTitle: req.BookTitle,
		StoreName: req.StoreName,
		Quantity:  req.Quantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c)
}
