package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dujiao-next/delivery/internal/constants"
	"github.com/dujiao-next/delivery/internal/logger"
	"github.com/dujiao-next/delivery/internal/models"
	"github.com/dujiao-next/delivery/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CouponAdminService 优惠券管理服务
type CouponAdminService struct {
	repo         repository.CouponRepository
	categoryRepo repository.CategoryRepository
	storeRepo    repository.StoreRepository
	productRepo  repository.ProductRepository
}

// NewCouponAdminService 创建优惠券管理服务，目录仓库为空时跳过适用对象存在性校验
func NewCouponAdminService(repo repository.CouponRepository, categoryRepo repository.CategoryRepository, storeRepo repository.StoreRepository, productRepo repository.ProductRepository) *CouponAdminService {
	return &CouponAdminService{
		repo:         repo,
		categoryRepo: categoryRepo,
		storeRepo:    storeRepo,
		productRepo:  productRepo,
	}
}

// CouponInput 创建/更新优惠券输入
type CouponInput struct {
	Code              string
	Title             string
	Description       string
	DiscountType      string
	DiscountValue     models.Money
	MinOrderAmount    *models.Money
	MaxDiscountAmount *models.Money
	ApplicableTo      string
	ApplicableID      *uint
	IsFirstOrderOnly  bool
	MaxUsagePerUser   int
	TotalUsageLimit   *int
	StartDate         *time.Time
	EndDate           *time.Time
	IsActive          *bool
}

// Create 创建优惠券
func (s *CouponAdminService) Create(ctx context.Context, input CouponInput, createdBy uint) (*models.Coupon, error) {
	normalized, err := normalizeCouponInput(input)
	if err != nil {
		return nil, err
	}
	if err := s.ensureTargetExists(normalized); err != nil {
		return nil, err
	}

	exist, err := s.repo.GetByCode(normalized.Code)
	if err != nil {
		return nil, internalError("load coupon failed", err)
	}
	if exist != nil {
		return nil, ErrCouponCodeExists
	}

	coupon := &models.Coupon{CurrentUsageCount: 0, IsActive: true}
	applyCouponInput(coupon, normalized)
	if createdBy != 0 {
		coupon.CreatedBy = &createdBy
	}
	if err := s.repo.Create(coupon); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCouponCodeExists
		}
		return nil, internalError("create coupon failed", err)
	}
	if !coupon.IsActive {
		// gorm 对零值 bool 使用列默认值，需要显式回写
		if err := s.repo.Update(coupon); err != nil {
			return nil, internalError("update coupon failed", err)
		}
	}
	logger.Ctx(ctx).Infow("coupon_created", "coupon_id", coupon.ID, "code", coupon.Code, "created_by", createdBy)
	return coupon, nil
}

// Update 更新优惠券，修改优惠码时需要重新判重
func (s *CouponAdminService) Update(ctx context.Context, id uint, input CouponInput) (*models.Coupon, error) {
	coupon, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	normalized, err := normalizeCouponInput(input)
	if err != nil {
		return nil, err
	}
	if err := s.ensureTargetExists(normalized); err != nil {
		return nil, err
	}
	if normalized.Code != coupon.Code {
		exist, err := s.repo.GetByCode(normalized.Code)
		if err != nil {
			return nil, internalError("load coupon failed", err)
		}
		if exist != nil && exist.ID != coupon.ID {
			return nil, ErrCouponCodeExists
		}
	}

	applyCouponInput(coupon, normalized)
	if err := s.repo.Update(coupon); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCouponCodeExists
		}
		return nil, internalError("update coupon failed", err)
	}
	logger.Ctx(ctx).Infow("coupon_updated", "coupon_id", coupon.ID, "code", coupon.Code)
	return s.reload(coupon), nil
}

// Delete 删除优惠券（使用记录保留）
func (s *CouponAdminService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return internalError("delete coupon failed", err)
	}
	logger.Ctx(ctx).Infow("coupon_deleted", "coupon_id", id)
	return nil
}

// ToggleStatus 切换启用状态
func (s *CouponAdminService) ToggleStatus(ctx context.Context, id uint) (*models.Coupon, error) {
	coupon, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	coupon.IsActive = !coupon.IsActive
	if err := s.repo.Update(coupon); err != nil {
		return nil, internalError("toggle coupon failed", err)
	}
	logger.Ctx(ctx).Infow("coupon_toggled", "coupon_id", id, "is_active", coupon.IsActive)
	return s.reload(coupon), nil
}

// reload 重新读取，返回核销路径写入的最新次数
func (s *CouponAdminService) reload(coupon *models.Coupon) *models.Coupon {
	fresh, err := s.repo.GetByID(coupon.ID)
	if err != nil || fresh == nil {
		return coupon
	}
	return fresh
}

// Get 获取优惠券
func (s *CouponAdminService) Get(id uint) (*models.Coupon, error) {
	if id == 0 {
		return nil, ErrCouponNotFound
	}
	coupon, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internalError("load coupon failed", err)
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	return coupon, nil
}

// List 优惠券列表
func (s *CouponAdminService) List(filter repository.CouponListFilter) ([]models.Coupon, int64, error) {
	coupons, total, err := s.repo.List(filter)
	if err != nil {
		return nil, 0, internalError("list coupons failed", err)
	}
	return coupons, total, nil
}

// ensureTargetExists 校验适用对象存在
func (s *CouponAdminService) ensureTargetExists(input CouponInput) error {
	if input.ApplicableID == nil {
		return nil
	}
	id := *input.ApplicableID
	var found bool
	var err error
	switch input.ApplicableTo {
	case constants.ScopeStore:
		if s.storeRepo == nil {
			return nil
		}
		var row *models.Store
		row, err = s.storeRepo.GetByID(id)
		found = row != nil
	case constants.ScopeCategory:
		if s.categoryRepo == nil {
			return nil
		}
		var row *models.Category
		row, err = s.categoryRepo.GetByID(id)
		found = row != nil
	case constants.ScopeSubCategory:
		if s.categoryRepo == nil {
			return nil
		}
		var row *models.SubCategory
		row, err = s.categoryRepo.GetSubCategoryByID(id)
		found = row != nil
	case constants.ScopeProduct:
		if s.productRepo == nil {
			return nil
		}
		var row *models.Product
		row, err = s.productRepo.GetByID(id)
		found = row != nil
	default:
		return nil
	}
	if err != nil {
		return internalError("load coupon target failed", err)
	}
	if !found {
		return ErrCouponInvalid.WithMessage("%s %d not found", strings.ToLower(input.ApplicableTo), id)
	}
	return nil
}

func normalizeCouponInput(input CouponInput) (CouponInput, error) {
	input.Code = strings.ToUpper(strings.TrimSpace(input.Code))
	if input.Code == "" {
		return input, ErrCouponInvalid.WithMessage("coupon code is required")
	}
	input.DiscountType = strings.ToUpper(strings.TrimSpace(input.DiscountType))
	switch input.DiscountType {
	case constants.DiscountTypePercentage, constants.DiscountTypeFixedAmount:
		if input.DiscountValue.Decimal.LessThanOrEqual(decimal.Zero) {
			return input, ErrCouponInvalid.WithMessage("discount value must be positive")
		}
		if input.DiscountType == constants.DiscountTypePercentage && input.DiscountValue.Decimal.GreaterThan(decimal.NewFromInt(100)) {
			return input, ErrCouponInvalid.WithMessage("percentage cannot exceed 100")
		}
	case constants.DiscountTypeFreeDelivery:
	default:
		return input, ErrCouponInvalid.WithMessage("unsupported discount type")
	}

	input.ApplicableTo = strings.ToUpper(strings.TrimSpace(input.ApplicableTo))
	switch input.ApplicableTo {
	case "":
		input.ApplicableTo = constants.ScopeAll
		input.ApplicableID = nil
	case constants.ScopeAll:
		input.ApplicableID = nil
	case constants.ScopeStore, constants.ScopeCategory, constants.ScopeSubCategory, constants.ScopeProduct:
		if input.ApplicableID == nil || *input.ApplicableID == 0 {
			return input, ErrCouponInvalid.WithMessage("applicable id is required for scope %s", input.ApplicableTo)
		}
	default:
		return input, ErrCouponInvalid.WithMessage("unsupported applicability scope")
	}

	if input.MaxUsagePerUser <= 0 {
		input.MaxUsagePerUser = constants.DefaultMaxUsagePerUser
	}
	if input.TotalUsageLimit != nil && *input.TotalUsageLimit < 0 {
		return input, ErrCouponInvalid.WithMessage("total usage limit cannot be negative")
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return input, ErrCouponInvalid.WithMessage("end date must be after start date")
	}
	return input, nil
}

func applyCouponInput(coupon *models.Coupon, input CouponInput) {
	coupon.Code = input.Code
	coupon.Title = strings.TrimSpace(input.Title)
	coupon.Description = strings.TrimSpace(input.Description)
	coupon.DiscountType = input.DiscountType
	coupon.DiscountValue = input.DiscountValue
	coupon.MinOrderAmount = input.MinOrderAmount
	coupon.MaxDiscountAmount = input.MaxDiscountAmount
	coupon.ApplicableTo = input.ApplicableTo
	coupon.ApplicableID = input.ApplicableID
	coupon.IsFirstOrderOnly = input.IsFirstOrderOnly
	coupon.MaxUsagePerUser = input.MaxUsagePerUser
	coupon.TotalUsageLimit = input.TotalUsageLimit
	coupon.StartDate = input.StartDate
	coupon.EndDate = input.EndDate
	if input.IsActive != nil {
		coupon.IsActive = *input.IsActive
	}
}
