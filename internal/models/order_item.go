package models

import (
	"time"
)

// OrderItem 订单项（下单时的价格快照）
type OrderItem struct {
	ID                 uint      `gorm:"primarykey" json:"id"`                                     // 主键
	OrderID            uint      `gorm:"index;not null" json:"order_id"`                           // 订单ID
	ProductID          uint      `gorm:"index;not null" json:"product_id"`                         // 商品ID
	VariantID          *uint     `gorm:"index" json:"variant_id,omitempty"`                        // 规格ID
	StoreID            uint      `gorm:"index;not null" json:"store_id"`                           // 门店ID
	CategoryID         uint      `gorm:"not null;default:0" json:"category_id"`                    // 分类快照
	SubCategoryID      *uint     `json:"sub_category_id,omitempty"`                                // 子分类快照
	ProductName        string    `gorm:"type:varchar(200);not null" json:"product_name"`           // 商品名称快照
	VariantDescription string    `gorm:"type:varchar(200)" json:"variant_description"`             // 规格描述快照
	UnitPrice          Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`  // 单价
	Quantity           int       `gorm:"not null" json:"quantity"`                                 // 数量
	TotalPrice         Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // 小计
	Notes              string    `gorm:"type:varchar(500)" json:"notes"`                           // 备注
	CreatedAt          time.Time `gorm:"index" json:"created_at"`                                  // 创建时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
