package repository

import "time"

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	DriverID    uint
	Status      string
	Statuses    []string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// CouponListFilter 优惠券列表筛选
type CouponListFilter struct {
	Page         int
	PageSize     int
	Search       string
	DiscountType string
	IsActive     *bool
}

// NotificationListFilter 通知列表筛选
type NotificationListFilter struct {
	Page       int
	PageSize   int
	UserID     uint
	UnreadOnly bool
}
