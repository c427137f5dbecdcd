package public

import (
	handlershared "github.com/dujiao-next/delivery/internal/http/handlers/shared"
	"github.com/dujiao-next/delivery/internal/http/response"
	"github.com/dujiao-next/delivery/internal/service"

	"github.com/gin-gonic/gin"
)

// VerifyCouponRequest 优惠券试算请求，address_id 可选，填写时一并估算配送费
type VerifyCouponRequest struct {
	Code      string             `json:"code" binding:"required"`
	AddressID uint               `json:"address_id"`
	Items     []OrderItemRequest `json:"items"`
}

// DeliveryFeeRequest 配送费试算请求
type DeliveryFeeRequest struct {
	AddressID uint   `json:"address_id" binding:"required"`
	StoreIDs  []uint `json:"store_ids"`
}

// VerifyCoupon 优惠券试算（不核销）
func (h *Handler) VerifyCoupon(c *gin.Context) {
	uid, ok := handlershared.GetUserID(c)
	if !ok {
		return
	}
	var req VerifyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "invalid request", nil)
		return
	}

	result, err := h.OrderService.VerifyCoupon(c.Request.Context(), service.VerifyCouponInput{
		UserID:    uid,
		AddressID: req.AddressID,
		Code:      req.Code,
		Items:     toItemSpecs(req.Items),
	})
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.Success(c, result)
}

// EstimateDeliveryFee 多门店配送费试算
func (h *Handler) EstimateDeliveryFee(c *gin.Context) {
	uid, ok := handlershared.GetUserID(c)
	if !ok {
		return
	}
	var req DeliveryFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "invalid request", nil)
		return
	}

	estimate, err := h.OrderService.EstimateDeliveryFee(c.Request.Context(), uid, req.AddressID, req.StoreIDs)
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.Success(c, estimate)
}
