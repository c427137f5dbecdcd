package models

import (
	"time"
)

// Coupon 优惠券
type Coupon struct {
	ID                uint       `gorm:"primarykey" json:"id"`                                         // 主键
	Code              string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`            // 优惠码（大写存储）
	Title             string     `gorm:"type:varchar(200)" json:"title"`                               // 标题
	Description       string     `gorm:"type:text" json:"description"`                                 // 描述
	DiscountType      string     `gorm:"type:varchar(20);not null" json:"discount_type"`               // 类型（PERCENTAGE/FIXED_AMOUNT/FREE_DELIVERY）
	DiscountValue     Money      `gorm:"type:decimal(20,2);not null;default:0" json:"discount_value"`  // 数值（固定金额或百分比）
	MinOrderAmount    *Money     `gorm:"type:decimal(20,2)" json:"min_order_amount,omitempty"`         // 使用门槛
	MaxDiscountAmount *Money     `gorm:"type:decimal(20,2)" json:"max_discount_amount,omitempty"`      // 最大优惠金额
	ApplicableTo      string     `gorm:"type:varchar(20);not null;default:'ALL'" json:"applicable_to"` // 适用范围（ALL/STORE/CATEGORY/SUBCATEGORY/PRODUCT）
	ApplicableID      *uint      `gorm:"index" json:"applicable_id,omitempty"`                         // 适用对象ID
	IsFirstOrderOnly  bool       `gorm:"not null;default:false" json:"is_first_order_only"`            // 仅限首单
	MaxUsagePerUser   int        `gorm:"not null;default:1" json:"max_usage_per_user"`                 // 每人使用上限
	TotalUsageLimit   *int       `json:"total_usage_limit,omitempty"`                                  // 总使用上限（为空表示不限制）
	CurrentUsageCount int        `gorm:"not null;default:0" json:"current_usage_count"`                // 已使用次数
	StartDate         *time.Time `gorm:"index" json:"start_date"`                                      // 生效时间
	EndDate           *time.Time `gorm:"index" json:"end_date"`                                        // 失效时间
	IsActive          bool       `gorm:"not null;default:true" json:"is_active"`                       // 是否启用
	CreatedBy         *uint      `json:"created_by,omitempty"`                                         // 创建人
	CreatedAt         time.Time  `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt         time.Time  `gorm:"index" json:"updated_at"`                                      // 更新时间
}

// TableName 指定表名
func (Coupon) TableName() string {
	return "coupons"
}

// HasUsageLimit 是否设置了总使用上限
func (c *Coupon) HasUsageLimit() bool {
	return c != nil && c.TotalUsageLimit != nil
}
