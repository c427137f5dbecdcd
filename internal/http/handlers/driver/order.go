package driver

import (
	"strconv"

	handlershared "github.com/dujiao-next/delivery/internal/http/handlers/shared"
	"github.com/dujiao-next/delivery/internal/http/response"
	"github.com/dujiao-next/delivery/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateStatusRequest 更新订单状态请求
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// ListOrders 骑手订单列表，active=true 时仅返回进行中的订单
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := handlershared.GetUserID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.QueryPagination(c)
	activeOnly, _ := strconv.ParseBool(c.DefaultQuery("active", "false"))

	orders, total, err := h.OrderService.ListDriverOrders(c.Request.Context(), uid, activeOnly, page, pageSize)
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// UpdateOrderStatus 骑手更新指派给自己的订单状态
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	uid, ok := handlershared.GetUserID(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "invalid request", nil)
		return
	}

	viewer := service.OrderViewer{UserID: uid, Role: handlershared.GetUserRole(c)}
	order, err := h.OrderService.TransitionStatusAs(c.Request.Context(), orderID, req.Status, viewer, req.Note)
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.Success(c, order)
}
