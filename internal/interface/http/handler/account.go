package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appaccount "github.com/xiebiao/bookshop/internal/application/account"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/pkg/response"
)

// AccountHandler 账户HTTP处理器
type AccountHandler struct {
	changePasswordUseCase *appaccount.ChangePasswordUseCase
}

// NewAccountHandler 创建账户处理器
func NewAccountHandler(changePasswordUseCase *appaccount.ChangePasswordUseCase) *AccountHandler {
	return &AccountHandler{
		changePasswordUseCase: changePasswordUseCase,
	}
}

// ChangePassword 修改密码
// @Summary      修改密码
// @Description  用户名、邮箱、旧密码三者同时匹配才允许更新密码
// @Tags         账户
// @Accept       json
// @Produce      json
// @Param        request body dto.ChangePasswordRequest true "修改密码请求"
// @Success      200 {object} map[string]string
// @Failure      400 {object} map[string]string "参数错误"
// @Failure      401 {object} map[string]string "凭证不匹配"
// @Router       /api/User/Account [put]
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "malformed request body")
		return
	}

	err := h.changePasswordUseCase.Execute(c.Request.Context(), appaccount.ChangePasswordRequest{
		Username:    req.Username,
		Email:       req.Email,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c)
}
