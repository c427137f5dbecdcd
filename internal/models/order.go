package models

import (
	"time"
)

// Order 订单表
type Order struct {
	ID               uint       `gorm:"primarykey" json:"id"`                                         // 主键
	OrderNo          string     `gorm:"type:varchar(32);uniqueIndex;not null" json:"order_no"`        // 订单编号
	UserID           uint       `gorm:"index;not null" json:"user_id"`                                // 下单用户
	DriverID         *uint      `gorm:"index" json:"driver_id,omitempty"`                             // 骑手ID
	Status           string     `gorm:"type:varchar(32);index;not null" json:"status"`                // 订单状态
	AddressLabel     string     `gorm:"type:varchar(50)" json:"address_label"`                        // 地址标签快照
	DeliveryAddress  string     `gorm:"type:varchar(500);not null" json:"delivery_address"`           // 收货地址快照
	DeliveryLat      float64    `gorm:"not null" json:"delivery_lat"`                                 // 收货纬度快照
	DeliveryLng      float64    `gorm:"not null" json:"delivery_lng"`                                 // 收货经度快照
	Instruction      string     `gorm:"type:text" json:"instruction"`                                 // 配送备注
	Subtotal         Money      `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`        // 商品小计
	DeliveryFee      Money      `gorm:"type:decimal(20,2);not null;default:0" json:"delivery_fee"`    // 配送费
	DiscountAmount   Money      `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 优惠金额
	TotalAmount      Money      `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`    // 实付金额
	CouponID         *uint      `gorm:"index" json:"coupon_id,omitempty"`                             // 优惠券ID
	DistanceKM       float64    `gorm:"not null;default:0" json:"distance_km"`                        // 估算路程
	EstimatedMinutes int        `gorm:"not null;default:0" json:"estimated_minutes"`                  // 预计送达分钟数
	DeliveredAt      *time.Time `gorm:"index" json:"delivered_at"`                                    // 送达时间
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt        time.Time  `gorm:"index" json:"updated_at"`                                      // 更新时间

	// 关联
	Items  []OrderItem  `gorm:"foreignKey:OrderID" json:"items,omitempty"`   // 订单项
	Stores []OrderStore `gorm:"foreignKey:OrderID" json:"stores,omitempty"`  // 涉及门店
	Driver *User        `gorm:"foreignKey:DriverID" json:"driver,omitempty"` // 骑手信息
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// StoreIDs 返回订单涉及的门店ID
func (o *Order) StoreIDs() []uint {
	if o == nil {
		return nil
	}
	ids := make([]uint, 0, len(o.Stores))
	for _, s := range o.Stores {
		ids = append(ids, s.StoreID)
	}
	return ids
}

// OrderStore 订单与门店关联
type OrderStore struct {
	OrderID   uint   `gorm:"primaryKey;autoIncrement:false" json:"order_id"`       // 订单ID
	StoreID   uint   `gorm:"primaryKey;autoIncrement:false;index" json:"store_id"` // 门店ID
	Position  int    `gorm:"not null;default:0" json:"position"`                   // 首次出现顺序
	StoreName string `gorm:"type:varchar(200)" json:"store_name"`                  // 门店名称快照
}

// TableName 指定表名
func (OrderStore) TableName() string {
	return "order_stores"
}
