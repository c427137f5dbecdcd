package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表
type Product struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                    // 主键
	StoreID       uint           `gorm:"index;not null" json:"store_id"`                          // 所属门店
	CategoryID    uint           `gorm:"index" json:"category_id"`                                // 分类ID
	SubCategoryID *uint          `gorm:"index" json:"sub_category_id,omitempty"`                  // 子分类ID
	Name          string         `gorm:"type:varchar(200);not null" json:"name"`                  // 名称
	Description   string         `gorm:"type:text" json:"description"`                            // 描述
	BasePrice     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"base_price"` // 基础价格
	IsAvailable   bool           `gorm:"not null;default:true;index" json:"is_available"`         // 是否可售
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt     time.Time      `json:"updated_at"`                                              // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                          // 软删除时间

	// 关联
	Store    Store            `gorm:"foreignKey:StoreID" json:"store,omitempty"`      // 门店信息
	Variants []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"` // 规格列表
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// ProductVariant 商品规格
type ProductVariant struct {
	ID              uint      `gorm:"primarykey" json:"id"`                                          // 主键
	ProductID       uint      `gorm:"index;not null" json:"product_id"`                              // 商品ID
	VariantType     string    `gorm:"type:varchar(50)" json:"variant_type"`                          // 规格类型（尺寸/口味）
	VariantValue    string    `gorm:"type:varchar(100)" json:"variant_value"`                        // 规格值
	PriceAdjustment Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price_adjustment"` // 加价
	IsAvailable     bool      `gorm:"not null;default:true" json:"is_available"`                     // 是否可售
	CreatedAt       time.Time `json:"created_at"`                                                    // 创建时间
	UpdatedAt       time.Time `json:"updated_at"`                                                    // 更新时间
}

// TableName 指定表名
func (ProductVariant) TableName() string {
	return "product_variants"
}

// Label 规格描述（类型: 值）
func (v *ProductVariant) Label() string {
	if v == nil {
		return ""
	}
	if v.VariantType == "" {
		return v.VariantValue
	}
	return v.VariantType + ": " + v.VariantValue
}
