package service

import (
	"context"
	"strings"
	"time"

	"github.com/dujiao-next/delivery/internal/constants"
	"github.com/dujiao-next/delivery/internal/models"
	"github.com/dujiao-next/delivery/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PricedLineItem 服务端定价后的订单行
type PricedLineItem struct {
	ProductID          uint         `json:"product_id"`
	VariantID          *uint        `json:"variant_id,omitempty"`
	StoreID            uint         `json:"store_id"`
	CategoryID         uint         `json:"category_id"`
	SubCategoryID      *uint        `json:"sub_category_id,omitempty"`
	ProductName        string       `json:"product_name"`
	VariantDescription string       `json:"variant_description"`
	UnitPrice          models.Money `json:"unit_price"`
	Quantity           int          `json:"quantity"`
	LineTotal          models.Money `json:"line_total"`
	Notes              string       `json:"notes"`
}

// SubtotalOf 计算订单行小计
func SubtotalOf(items []PricedLineItem) models.Money {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.LineTotal.Decimal)
	}
	return models.NewMoneyFromDecimal(sum)
}

// CouponService 优惠券校验与折扣计算
type CouponService struct {
	couponRepo repository.CouponRepository
	usageRepo  repository.CouponUsageRepository
	now        func() time.Time
}

// NewCouponService 创建优惠券服务
func NewCouponService(couponRepo repository.CouponRepository, usageRepo repository.CouponUsageRepository) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		usageRepo:  usageRepo,
		now:        time.Now,
	}
}

// Validate 按顺序校验优惠券，首个失败项即返回
func (s *CouponService) Validate(ctx context.Context, code string, userID uint, items []PricedLineItem, store *models.Store) (*models.Coupon, error) {
	return s.validate(s.couponRepo, s.usageRepo, false, code, userID, items, store)
}

// ValidateTx 在事务内校验优惠券，优惠券行加锁以串行化并发核销
func (s *CouponService) ValidateTx(tx *gorm.DB, code string, userID uint, items []PricedLineItem, store *models.Store) (*models.Coupon, error) {
	return s.validate(s.couponRepo.WithTx(tx), s.usageRepo.WithTx(tx), true, code, userID, items, store)
}

func (s *CouponService) validate(couponRepo repository.CouponRepository, usageRepo repository.CouponUsageRepository, lock bool, code string, userID uint, items []PricedLineItem, store *models.Store) (*models.Coupon, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, ErrCouponNotFound
	}

	var coupon *models.Coupon
	var err error
	if lock {
		coupon, err = couponRepo.GetByCodeForUpdate(normalized)
	} else {
		coupon, err = couponRepo.GetByCode(normalized)
	}
	if err != nil {
		return nil, internalError("load coupon failed", err)
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	if !coupon.IsActive {
		return nil, ErrCouponInactive
	}

	now := s.now()
	if coupon.StartDate != nil && now.Before(*coupon.StartDate) {
		return nil, ErrCouponNotStarted
	}
	if coupon.EndDate != nil && now.After(*coupon.EndDate) {
		return nil, ErrCouponExpired
	}

	if coupon.HasUsageLimit() && coupon.CurrentUsageCount >= *coupon.TotalUsageLimit {
		return nil, ErrCouponLimitReached
	}

	used, err := usageRepo.CountByCouponAndUser(coupon.ID, userID)
	if err != nil {
		return nil, internalError("count coupon usage failed", err)
	}
	if used >= int64(coupon.MaxUsagePerUser) {
		return nil, ErrCouponPerUserLimitReached
	}

	if coupon.IsFirstOrderOnly {
		prior, err := usageRepo.CountByUser(userID)
		if err != nil {
			return nil, internalError("count user coupon usage failed", err)
		}
		if prior > 0 {
			return nil, ErrCouponNotFirstOrder
		}
	}

	subtotal := SubtotalOf(items)
	if coupon.MinOrderAmount != nil && subtotal.LessThan(coupon.MinOrderAmount.Decimal) {
		return nil, ErrCouponMinimumNotMet.WithMessage("minimum order amount of %s required", coupon.MinOrderAmount.String())
	}

	if !couponApplies(coupon, items, store) {
		return nil, ErrCouponNotApplicable
	}
	return coupon, nil
}

func couponApplies(coupon *models.Coupon, items []PricedLineItem, store *models.Store) bool {
	scope := strings.ToUpper(strings.TrimSpace(coupon.ApplicableTo))
	if scope == "" || scope == constants.ScopeAll {
		return true
	}
	if coupon.ApplicableID == nil {
		return false
	}
	target := *coupon.ApplicableID

	switch scope {
	case constants.ScopeStore:
		return store != nil && store.ID == target
	case constants.ScopeCategory:
		for _, item := range items {
			if item.CategoryID == target {
				return true
			}
		}
	case constants.ScopeSubCategory:
		for _, item := range items {
			if item.SubCategoryID != nil && *item.SubCategoryID == target {
				return true
			}
		}
	case constants.ScopeProduct:
		for _, item := range items {
			if item.ProductID == target {
				return true
			}
		}
	}
	return false
}

// CalculateDiscount 计算折扣金额
func (s *CouponService) CalculateDiscount(coupon *models.Coupon, subtotal, deliveryFee models.Money) models.Money {
	return CalculateDiscount(coupon, subtotal, deliveryFee)
}

// CalculateDiscount 免配送费直接返回配送费；其余类型先按封顶、再按小计截断
func CalculateDiscount(coupon *models.Coupon, subtotal, deliveryFee models.Money) models.Money {
	if coupon == nil {
		return models.Money{}
	}

	var discount decimal.Decimal
	switch coupon.DiscountType {
	case constants.DiscountTypeFreeDelivery:
		return deliveryFee.NonNegative()
	case constants.DiscountTypeFixedAmount:
		discount = coupon.DiscountValue.Decimal
	case constants.DiscountTypePercentage:
		discount = subtotal.Decimal.Mul(coupon.DiscountValue.Decimal).Div(decimal.NewFromInt(100))
	default:
		return models.Money{}
	}

	if coupon.MaxDiscountAmount != nil && discount.GreaterThan(coupon.MaxDiscountAmount.Decimal) {
		discount = coupon.MaxDiscountAmount.Decimal
	}
	if discount.GreaterThan(subtotal.Decimal) {
		discount = subtotal.Decimal
	}
	return models.NewMoneyFromDecimal(discount).NonNegative()
}

// RecordRedemption 在事务内写入使用记录并占用次数
func (s *CouponService) RecordRedemption(tx *gorm.DB, coupon *models.Coupon, userID, orderID uint, amount models.Money) error {
	if coupon == nil {
		return nil
	}
	ok, err := s.couponRepo.WithTx(tx).IncrementUsage(coupon.ID)
	if err != nil {
		return internalError("increment coupon usage failed", err)
	}
	if !ok {
		return ErrCouponLimitReached
	}
	usage := &models.CouponUsage{
		CouponID:       coupon.ID,
		UserID:         userID,
		OrderID:        orderID,
		DiscountAmount: amount,
	}
	if err := s.usageRepo.WithTx(tx).Create(usage); err != nil {
		return internalError("create coupon usage failed", err)
	}
	return nil
}

// ListUsages 按优惠券分页列出核销记录
func (s *CouponService) ListUsages(couponID uint, page, pageSize int) ([]models.CouponUsage, int64, error) {
	coupon, err := s.couponRepo.GetByID(couponID)
	if err != nil {
		return nil, 0, internalError("load coupon failed", err)
	}
	if coupon == nil {
		return nil, 0, ErrCouponNotFound
	}
	usages, total, err := s.usageRepo.ListByCoupon(couponID, page, pageSize)
	if err != nil {
		return nil, 0, internalError("list coupon usages failed", err)
	}
	return usages, total, nil
}

// CouponVerification 优惠券试算结果
type CouponVerification struct {
	Coupon      *models.Coupon   `json:"coupon"`
	Items       []PricedLineItem `json:"items"`
	Subtotal    models.Money     `json:"subtotal"`
	DeliveryFee models.Money     `json:"delivery_fee"`
	Discount    models.Money     `json:"discount"`
	Total       models.Money     `json:"total"`
}
