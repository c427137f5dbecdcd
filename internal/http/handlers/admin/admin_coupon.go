package admin

import (
	"strconv"
	"strings"
	"time"

	handlershared "github.com/dujiao-next/delivery/internal/http/handlers/shared"
	"github.com/dujiao-next/delivery/internal/http/response"
	"github.com/dujiao-next/delivery/internal/models"
	"github.com/dujiao-next/delivery/internal/repository"
	"github.com/dujiao-next/delivery/internal/service"

	"github.com/gin-gonic/gin"
)

// CouponRequest 创建/更新优惠券请求
type CouponRequest struct {
	Code              string        `json:"code" binding:"required"`
	Title             string        `json:"title"`
	Description       string        `json:"description"`
	DiscountType      string        `json:"discount_type" binding:"required"`
	DiscountValue     models.Money  `json:"discount_value"`
	MinOrderAmount    *models.Money `json:"min_order_amount"`
	MaxDiscountAmount *models.Money `json:"max_discount_amount"`
	ApplicableTo      string        `json:"applicable_to"`
	ApplicableID      *uint         `json:"applicable_id"`
	IsFirstOrderOnly  bool          `json:"is_first_order_only"`
	MaxUsagePerUser   int           `json:"max_usage_per_user"`
	TotalUsageLimit   *int          `json:"total_usage_limit"`
	StartDate         string        `json:"start_date"`
	EndDate           string        `json:"end_date"`
	IsActive          *bool         `json:"is_active"`
}

func (r CouponRequest) toInput() (service.CouponInput, error) {
	startDate, err := parseTimeNullable(r.StartDate)
	if err != nil {
		return service.CouponInput{}, err
	}
	endDate, err := parseTimeNullable(r.EndDate)
	if err != nil {
		return service.CouponInput{}, err
	}
	return service.CouponInput{
		Code:              r.Code,
		Title:             r.Title,
		Description:       r.Description,
		DiscountType:      r.DiscountType,
		DiscountValue:     r.DiscountValue,
		MinOrderAmount:    r.MinOrderAmount,
		MaxDiscountAmount: r.MaxDiscountAmount,
		ApplicableTo:      r.ApplicableTo,
		ApplicableID:      r.ApplicableID,
		IsFirstOrderOnly:  r.IsFirstOrderOnly,
		MaxUsagePerUser:   r.MaxUsagePerUser,
		TotalUsageLimit:   r.TotalUsageLimit,
		StartDate:         startDate,
		EndDate:           endDate,
		IsActive:          r.IsActive,
	}, nil
}

// CreateCoupon 创建优惠券
func (h *Handler) CreateCoupon(c *gin.Context) {
	adminID, ok := handlershared.GetUserID(c)
	if !ok {
		return
	}
	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "invalid request", nil)
		return
	}
	input, err := req.toInput()
	if err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "invalid date, expected RFC3339", nil)
		return
	}

	coupon, err := h.CouponAdminService.Create(c.Request.Context(), input, adminID)
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.Success(c, coupon)
}

// UpdateCoupon 更新优惠券
func (h *Handler) UpdateCoupon(c *gin.Context) {
	couponID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "invalid request", nil)
		return
	}
	input, err := req.toInput()
	if err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "invalid date, expected RFC3339", nil)
		return
	}

	coupon, err := h.CouponAdminService.Update(c.Request.Context(), couponID, input)
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.Success(c, coupon)
}

// GetCoupon 优惠券详情
func (h *Handler) GetCoupon(c *gin.Context) {
	couponID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	coupon, err := h.CouponAdminService.Get(couponID)
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.Success(c, coupon)
}

// DeleteCoupon 删除优惠券
func (h *Handler) DeleteCoupon(c *gin.Context) {
	couponID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.CouponAdminService.Delete(c.Request.Context(), couponID); err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"deleted": true,
	})
}

// ToggleCoupon 切换优惠券启用状态
func (h *Handler) ToggleCoupon(c *gin.Context) {
	couponID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	coupon, err := h.CouponAdminService.ToggleStatus(c.Request.Context(), couponID)
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.Success(c, coupon)
}

// GetCoupons 优惠券列表
func (h *Handler) GetCoupons(c *gin.Context) {
	page, pageSize := handlershared.QueryPagination(c)

	var isActive *bool
	if raw := strings.TrimSpace(c.Query("is_active")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			handlershared.RespondError(c, response.CodeBadRequest, "invalid is_active", nil)
			return
		}
		isActive = &parsed
	}

	coupons, total, err := h.CouponAdminService.List(repository.CouponListFilter{
		Page:         page,
		PageSize:     pageSize,
		Search:       strings.TrimSpace(c.Query("search")),
		DiscountType: strings.ToUpper(strings.TrimSpace(c.Query("discount_type"))),
		IsActive:     isActive,
	})
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, coupons, response.BuildPagination(page, pageSize, total))
}

// GetCouponUsages 优惠券核销记录
func (h *Handler) GetCouponUsages(c *gin.Context) {
	couponID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	page, pageSize := handlershared.QueryPagination(c)
	usages, total, err := h.CouponService.ListUsages(couponID, page, pageSize)
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, usages, response.BuildPagination(page, pageSize, total))
}

func parseTimeNullable(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
