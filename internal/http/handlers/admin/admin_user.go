package admin

import (
	handlershared "github.com/dujiao-next/delivery/internal/http/handlers/shared"
	"github.com/dujiao-next/delivery/internal/http/response"

	"github.com/gin-gonic/gin"
)

// UpdateUserStatusRequest 启用/停用用户请求
type UpdateUserStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// UpdateUserStatus 启用或停用用户
func (h *Handler) UpdateUserStatus(c *gin.Context) {
	adminID, ok := handlershared.GetUserID(c)
	if !ok {
		return
	}
	userID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "invalid request", nil)
		return
	}

	user, err := h.UserAdminService.UpdateStatus(c.Request.Context(), userID, *req.IsActive, adminID)
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.Success(c, user)
}
