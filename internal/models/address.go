package models

import "time"

// UserAddress 用户收货地址
type UserAddress struct {
	ID          uint      `gorm:"primarykey" json:"id"`                      // 主键
	UserID      uint      `gorm:"index;not null" json:"user_id"`             // 所属用户
	Label       string    `gorm:"type:varchar(50)" json:"label"`             // 标签（家/公司）
	AddressLine string    `gorm:"type:varchar(500);not null" json:"address"` // 详细地址
	Latitude    float64   `gorm:"not null" json:"latitude"`                  // 纬度
	Longitude   float64   `gorm:"not null" json:"longitude"`                 // 经度
	IsDefault   bool      `gorm:"not null;default:false" json:"is_default"`  // 是否默认
	CreatedAt   time.Time `json:"created_at"`                                // 创建时间
	UpdatedAt   time.Time `json:"updated_at"`                                // 更新时间
}

// TableName 指定表名
func (UserAddress) TableName() string {
	return "user_addresses"
}
