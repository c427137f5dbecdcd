package models

import (
	"time"

	"gorm.io/gorm"
)

// Store 商户门店
type Store struct {
	ID                    uint           `gorm:"primarykey" json:"id"`                                             // 主键
	CategoryID            uint           `gorm:"index" json:"category_id"`                                         // 门店分类
	SubCategoryID         *uint          `gorm:"index" json:"sub_category_id,omitempty"`                           // 门店子分类
	Name                  string         `gorm:"type:varchar(200);not null" json:"name"`                           // 名称
	Address               string         `gorm:"type:varchar(500)" json:"address"`                                 // 地址
	Latitude              *float64       `json:"latitude"`                                                         // 纬度（可能缺失）
	Longitude             *float64       `json:"longitude"`                                                        // 经度（可能缺失）
	DeliveryFeePerKM      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"delivery_fee_per_km"` // 每公里配送费
	MinimumOrder          Money          `gorm:"type:decimal(20,2);not null;default:0" json:"minimum_order"`       // 起送金额
	EstimatedDeliveryTime int            `gorm:"not null;default:30" json:"estimated_delivery_time"`               // 预计送达分钟数
	OpeningTime           *string        `gorm:"type:varchar(8)" json:"opening_time,omitempty"`                    // 营业开始（HH:MM）
	ClosingTime           *string        `gorm:"type:varchar(8)" json:"closing_time,omitempty"`                    // 营业结束（HH:MM）
	IsActive              bool           `gorm:"not null;default:true;index" json:"is_active"`                     // 是否营业
	CreatedAt             time.Time      `json:"created_at"`                                                       // 创建时间
	UpdatedAt             time.Time      `json:"updated_at"`                                                       // 更新时间
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`                                                   // 软删除时间
}

// TableName 指定表名
func (Store) TableName() string {
	return "stores"
}

// HasCoordinates 是否配置了坐标
func (s *Store) HasCoordinates() bool {
	return s != nil && s.Latitude != nil && s.Longitude != nil
}
