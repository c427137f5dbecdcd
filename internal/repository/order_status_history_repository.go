package repository

import (
	"github.com/dujiao-next/delivery/internal/models"

	"gorm.io/gorm"
)

// OrderStatusHistoryRepository 订单状态记录数据访问接口
type OrderStatusHistoryRepository interface {
	Create(entry *models.OrderStatusHistory) error
	ListByOrder(orderID uint) ([]models.OrderStatusHistory, error)
	DeleteByOrderID(orderID uint) error
	WithTx(tx *gorm.DB) *GormOrderStatusHistoryRepository
}

// GormOrderStatusHistoryRepository GORM 实现
type GormOrderStatusHistoryRepository struct {
	db *gorm.DB
}

// NewOrderStatusHistoryRepository 创建订单状态记录仓库
func NewOrderStatusHistoryRepository(db *gorm.DB) *GormOrderStatusHistoryRepository {
	return &GormOrderStatusHistoryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderStatusHistoryRepository) WithTx(tx *gorm.DB) *GormOrderStatusHistoryRepository {
	if tx == nil {
		return r
	}
	return &GormOrderStatusHistoryRepository{db: tx}
}

// Create 追加一条状态记录
func (r *GormOrderStatusHistoryRepository) Create(entry *models.OrderStatusHistory) error {
	return r.db.Create(entry).Error
}

// ListByOrder 按时间顺序列出订单状态记录
func (r *GormOrderStatusHistoryRepository) ListByOrder(orderID uint) ([]models.OrderStatusHistory, error) {
	var entries []models.OrderStatusHistory
	if err := r.db.Where("order_id = ?", orderID).Order("id asc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteByOrderID 删除订单的全部状态记录
func (r *GormOrderStatusHistoryRepository) DeleteByOrderID(orderID uint) error {
	return r.db.Where("order_id = ?", orderID).Delete(&models.OrderStatusHistory{}).Error
}
