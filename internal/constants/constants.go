package constants

// 订单状态常量
const (
	OrderStatusPending        = "PENDING"
	OrderStatusConfirmed      = "CONFIRMED"
	OrderStatusPreparing      = "PREPARING"
	OrderStatusOutForDelivery = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      = "DELIVERED"
	OrderStatusCancelled      = "CANCELLED"
)

// OrderStatuses 全部合法订单状态
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// DriverActiveOrderStatuses 骑手进行中的订单状态
var DriverActiveOrderStatuses = []string{
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusOutForDelivery,
}

// 优惠券类型常量
const (
	DiscountTypePercentage   = "PERCENTAGE"
	DiscountTypeFixedAmount  = "FIXED_AMOUNT"
	DiscountTypeFreeDelivery = "FREE_DELIVERY"
)

// 优惠券适用范围常量
const (
	ScopeAll         = "ALL"
	ScopeStore       = "STORE"
	ScopeCategory    = "CATEGORY"
	ScopeSubCategory = "SUBCATEGORY"
	ScopeProduct     = "PRODUCT"
)

// 用户角色常量
const (
	UserTypeCustomer = "CUSTOMER"
	UserTypeDriver   = "DRIVER"
	UserTypeAdmin    = "ADMIN"
)

// 通知类型常量
const (
	NotificationTypeOrderStatus      = "ORDER_STATUS"
	NotificationTypeDriverAssignment = "DRIVER_ASSIGNMENT"
	NotificationReferenceOrder       = "ORDER"
)

// 订单事件类型
const (
	OrderEventPlaced         = "order.placed"
	OrderEventStatusChanged  = "order.status_changed"
	OrderEventDriverAssigned = "order.driver_assigned"
	OrderEventDeleted        = "order.deleted"
)

// OrderPlacedNote 下单时的初始状态备注
const OrderPlacedNote = "Order Placed"

// DefaultMaxUsagePerUser 每用户默认可用次数
const DefaultMaxUsagePerUser = 1

// 队列与任务常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"

	TaskNotificationDispatch = "notification:dispatch"
	TaskOrderEventPublish    = "order:event:publish"
)
