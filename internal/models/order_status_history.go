package models

import "time"

// OrderStatusHistory 订单状态流转记录（仅追加）
type OrderStatusHistory struct {
	ID         uint      `gorm:"primarykey" json:"id"`                       // 主键
	OrderID    uint      `gorm:"index;not null" json:"order_id"`             // 订单ID
	FromStatus string    `gorm:"type:varchar(32)" json:"from_status"`        // 原状态（首条为空）
	ToStatus   string    `gorm:"type:varchar(32);not null" json:"to_status"` // 新状态
	Note       string    `gorm:"type:varchar(500)" json:"note"`              // 备注
	ActorID    *uint     `gorm:"index" json:"actor_id,omitempty"`            // 操作人
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                    // 发生时间
}

// TableName 指定表名
func (OrderStatusHistory) TableName() string {
	return "order_status_histories"
}
