package admin

import (
	"strings"
	"time"

	handlershared "github.com/dujiao-next/delivery/internal/http/handlers/shared"
	"github.com/dujiao-next/delivery/internal/http/response"
	"github.com/dujiao-next/delivery/internal/service"

	"github.com/gin-gonic/gin"
)

const queryDateLayout = "2006-01-02"

// UpdateOrderStatusRequest 管理端更新订单状态请求
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// AssignDriverRequest 指派骑手请求
type AssignDriverRequest struct {
	DriverID uint `json:"driver_id" binding:"required"`
}

func parseQueryDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation(queryDateLayout, raw, time.Local)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// GetOrders 订单列表（状态、日期区间筛选）
func (h *Handler) GetOrders(c *gin.Context) {
	page, pageSize := handlershared.QueryPagination(c)
	startDate, err := parseQueryDate(c.Query("start_date"))
	if err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "invalid start_date, expected YYYY-MM-DD", nil)
		return
	}
	endDate, err := parseQueryDate(c.Query("end_date"))
	if err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "invalid end_date, expected YYYY-MM-DD", nil)
		return
	}

	orders, total, err := h.OrderService.ListAdminOrders(c.Request.Context(), service.AdminOrderQuery{
		Page:      page,
		PageSize:  pageSize,
		Status:    c.Query("status"),
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetOrder 订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	adminID, ok := handlershared.GetUserID(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.GetOrder(c.Request.Context(), orderID, service.OrderViewer{UserID: adminID, Role: handlershared.GetUserRole(c)})
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// UpdateOrderStatus 更新订单状态
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	adminID, ok := handlershared.GetUserID(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "invalid request", nil)
		return
	}

	order, err := h.OrderService.TransitionStatus(c.Request.Context(), orderID, req.Status, adminID, req.Note)
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// AssignDriver 指派骑手
func (h *Handler) AssignDriver(c *gin.Context) {
	adminID, ok := handlershared.GetUserID(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req AssignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "invalid request", nil)
		return
	}

	order, err := h.OrderService.AssignDriver(c.Request.Context(), orderID, req.DriverID, adminID)
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// DeleteOrder 删除订单
func (h *Handler) DeleteOrder(c *gin.Context) {
	orderID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.OrderService.DeleteOrder(c.Request.Context(), orderID); err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"deleted": true,
	})
}
