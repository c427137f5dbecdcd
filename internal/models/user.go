package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户表（顾客、骑手、管理员共用）
type User struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                                // 主键
	Name            string         `gorm:"type:varchar(100);not null" json:"name"`                              // 姓名
	Phone           string         `gorm:"type:varchar(32);uniqueIndex;not null" json:"phone"`                  // 手机号
	Email           string         `gorm:"type:varchar(255);index" json:"email"`                                // 邮箱
	PasswordHash    string         `gorm:"not null" json:"-"`                                                   // 密码哈希（不返回给前端）
	UserType        string         `gorm:"type:varchar(20);index;not null;default:'CUSTOMER'" json:"user_type"` // 角色（CUSTOMER/DRIVER/ADMIN）
	VehicleNumber   string         `gorm:"type:varchar(50)" json:"vehicle_number,omitempty"`                    // 车牌号（骑手）
	CurrentLat      *float64       `json:"current_lat,omitempty"`                                               // 当前纬度（骑手）
	CurrentLng      *float64       `json:"current_lng,omitempty"`                                               // 当前经度（骑手）
	TotalDeliveries int            `gorm:"not null;default:0" json:"total_deliveries"`                          // 累计配送次数
	FCMToken        string         `gorm:"type:varchar(255)" json:"-"`                                          // 推送 Token
	IsActive        bool           `gorm:"not null;default:true" json:"is_active"`                              // 是否启用
	LastLoginAt     *time.Time     `json:"last_login_at"`                                                       // 最后登录时间
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                             // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                                             // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                                      // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// IsDriver 是否骑手
func (u *User) IsDriver() bool {
	return u != nil && u.UserType == "DRIVER"
}
