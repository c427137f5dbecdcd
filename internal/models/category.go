package models

import (
	"time"

	"gorm.io/gorm"
)

// Category 商品分类
type Category struct {
	ID        uint           `gorm:"primarykey" json:"id"`                       // 主键
	Name      string         `gorm:"type:varchar(100);not null" json:"name"`     // 名称
	SortOrder int            `gorm:"not null;default:0;index" json:"sort_order"` // 排序权重
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`     // 是否启用
	CreatedAt time.Time      `json:"created_at"`                                 // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                                 // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                             // 软删除时间
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}

// SubCategory 商品子分类
type SubCategory struct {
	ID         uint      `gorm:"primarykey" json:"id"`                   // 主键
	CategoryID uint      `gorm:"index;not null" json:"category_id"`      // 所属分类
	Name       string    `gorm:"type:varchar(100);not null" json:"name"` // 名称
	CreatedAt  time.Time `json:"created_at"`                             // 创建时间
	UpdatedAt  time.Time `json:"updated_at"`                             // 更新时间
}

// TableName 指定表名
func (SubCategory) TableName() string {
	return "sub_categories"
}
