package public

import (
	handlershared "github.com/dujiao-next/delivery/internal/http/handlers/shared"
	"github.com/dujiao-next/delivery/internal/http/response"
	"github.com/dujiao-next/delivery/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderItemRequest 订单项请求
type OrderItemRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	VariantID *uint  `json:"variant_id"`
	Quantity  int    `json:"quantity" binding:"required"`
	Notes     string `json:"notes"`
}

// PlaceOrderRequest 下单请求
type PlaceOrderRequest struct {
	AddressID   uint               `json:"address_id"`
	Instruction string             `json:"delivery_instruction"`
	CouponCode  string             `json:"coupon_code"`
	Items       []OrderItemRequest `json:"items"`
}

func toItemSpecs(items []OrderItemRequest) []service.OrderItemSpec {
	specs := make([]service.OrderItemSpec, 0, len(items))
	for _, item := range items {
		specs = append(specs, service.OrderItemSpec{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			Notes:     item.Notes,
		})
	}
	return specs
}

func viewerOf(c *gin.Context) (service.OrderViewer, bool) {
	uid, ok := handlershared.GetUserID(c)
	if !ok {
		return service.OrderViewer{}, false
	}
	return service.OrderViewer{UserID: uid, Role: handlershared.GetUserRole(c)}, true
}

// PlaceOrder 下单
func (h *Handler) PlaceOrder(c *gin.Context) {
	uid, ok := handlershared.GetUserID(c)
	if !ok {
		return
	}

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "invalid request", nil)
		return
	}

	order, err := h.OrderService.PlaceOrder(c.Request.Context(), service.PlaceOrderInput{
		UserID:      uid,
		AddressID:   req.AddressID,
		Instruction: req.Instruction,
		CouponCode:  req.CouponCode,
		Items:       toItemSpecs(req.Items),
	})
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}

	response.SuccessWithMsg(c, "Order placed successfully", order)
}

// ListOrders 获取当前用户订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := handlershared.GetUserID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.QueryPagination(c)

	orders, total, err := h.OrderService.ListUserOrders(c.Request.Context(), uid, page, pageSize)
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}

	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetOrder 获取订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	viewer, ok := viewerOf(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.OrderService.GetOrder(c.Request.Context(), orderID, viewer)
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// TrackOrder 订单追踪
func (h *Handler) TrackOrder(c *gin.Context) {
	uid, ok := handlershared.GetUserID(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}

	tracking, err := h.OrderService.TrackOrder(c.Request.Context(), orderID, uid)
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.Success(c, tracking)
}

// OrderHistory 订单状态记录
func (h *Handler) OrderHistory(c *gin.Context) {
	viewer, ok := viewerOf(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}

	rows, err := h.OrderService.History(c.Request.Context(), orderID, viewer)
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.Success(c, rows)
}
