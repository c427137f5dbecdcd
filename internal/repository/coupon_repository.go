package repository

import (
	"errors"
	"strings"

	"github.com/dujiao-next/delivery/internal/models"

	"gorm.io/gorm"
)

// CouponRepository 优惠券数据访问接口
type CouponRepository interface {
	GetByID(id uint) (*models.Coupon, error)
	GetByCode(code string) (*models.Coupon, error)
	GetByCodeForUpdate(code string) (*models.Coupon, error)
	Create(coupon *models.Coupon) error
	Update(coupon *models.Coupon) error
	Delete(id uint) error
	List(filter CouponListFilter) ([]models.Coupon, int64, error)
	IncrementUsage(id uint) (bool, error)
	WithTx(tx *gorm.DB) *GormCouponRepository
}

// GormCouponRepository GORM 实现
type GormCouponRepository struct {
	db *gorm.DB
}

// NewCouponRepository 创建优惠券仓库
func NewCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCouponRepository) WithTx(tx *gorm.DB) *GormCouponRepository {
	if tx == nil {
		return r
	}
	return &GormCouponRepository{db: tx}
}

// GetByID 根据ID获取优惠券
func (r *GormCouponRepository) GetByID(id uint) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.First(&coupon, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// GetByCode 根据优惠码获取优惠券（忽略大小写）
func (r *GormCouponRepository) GetByCode(code string) (*models.Coupon, error) {
	return r.getByCode(r.db, code)
}

// GetByCodeForUpdate 根据优惠码获取优惠券并加行锁
func (r *GormCouponRepository) GetByCodeForUpdate(code string) (*models.Coupon, error) {
	return r.getByCode(forUpdate(r.db), code)
}

func (r *GormCouponRepository) getByCode(query *gorm.DB, code string) (*models.Coupon, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, nil
	}
	var coupon models.Coupon
	if err := query.Where("code = ?", normalized).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// Create 创建优惠券
func (r *GormCouponRepository) Create(coupon *models.Coupon) error {
	return r.db.Create(coupon).Error
}

// couponCounterColumns 由核销路径维护，后台编辑不得写回
var couponCounterColumns = []string{"current_usage_count", "created_by", "created_at"}

// Update 更新优惠券的可编辑字段，已使用次数只通过 IncrementUsage 变更
func (r *GormCouponRepository) Update(coupon *models.Coupon) error {
	if coupon == nil || coupon.ID == 0 {
		return gorm.ErrMissingWhereClause
	}
	return r.db.Model(coupon).Select("*").Omit(couponCounterColumns...).Updates(coupon).Error
}

// Delete 删除优惠券
func (r *GormCouponRepository) Delete(id uint) error {
	return r.db.Delete(&models.Coupon{}, id).Error
}

// List 优惠券列表
func (r *GormCouponRepository) List(filter CouponListFilter) ([]models.Coupon, int64, error) {
	query := r.db.Model(&models.Coupon{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		condition, count := buildLikeCondition(r.db, "code", "title")
		query = query.Where(condition, repeatLikeArgs("%"+search+"%", count)...)
	}
	if filter.DiscountType != "" {
		query = query.Where("discount_type = ?", filter.DiscountType)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var coupons []models.Coupon
	if err := query.Order("id desc").Find(&coupons).Error; err != nil {
		return nil, 0, err
	}
	return coupons, total, nil
}

// IncrementUsage 在总量未满时使用次数 +1，返回是否成功占用
func (r *GormCouponRepository) IncrementUsage(id uint) (bool, error) {
	if id == 0 {
		return false, nil
	}
	result := r.db.Model(&models.Coupon{}).
		Where("id = ?", id).
		Where("total_usage_limit IS NULL OR current_usage_count < total_usage_limit").
		UpdateColumn("current_usage_count", gorm.Expr("current_usage_count + ?", 1))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
