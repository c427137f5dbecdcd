package service

import (
	"context"
	"strings"
	"time"

	"github.com/dujiao-next/delivery/internal/constants"
	"github.com/dujiao-next/delivery/internal/logger"
	"github.com/dujiao-next/delivery/internal/models"
	"github.com/dujiao-next/delivery/internal/repository"

	"gorm.io/gorm"
)

// OrderViewer 订单查看者身份
type OrderViewer struct {
	UserID uint
	Role   string
}

// IsAdmin 是否管理员
func (v OrderViewer) IsAdmin() bool {
	return strings.EqualFold(v.Role, constants.UserTypeAdmin)
}

// IsDriver 是否骑手
func (v OrderViewer) IsDriver() bool {
	return strings.EqualFold(v.Role, constants.UserTypeDriver)
}

// canView 顾客只能查看自己的订单，骑手只能查看指派给自己的订单
func (v OrderViewer) canView(order *models.Order) bool {
	if order == nil {
		return false
	}
	if v.IsAdmin() {
		return true
	}
	if v.IsDriver() {
		return order.DriverID != nil && *order.DriverID == v.UserID
	}
	return order.UserID == v.UserID
}

// AdminOrderQuery 管理端订单查询条件
type AdminOrderQuery struct {
	Page      int
	PageSize  int
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
}

// DriverLocation 骑手位置信息
type DriverLocation struct {
	ID            uint     `json:"id"`
	Name          string   `json:"name"`
	Phone         string   `json:"phone"`
	VehicleNumber string   `json:"vehicle_number"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
}

// OrderTracking 订单追踪信息
type OrderTracking struct {
	OrderID          uint            `json:"order_id"`
	OrderNo          string          `json:"order_no"`
	Status           string          `json:"status"`
	EstimatedMinutes int             `json:"estimated_minutes"`
	DeliveryLat      float64         `json:"delivery_lat"`
	DeliveryLng      float64         `json:"delivery_lng"`
	DeliveredAt      *time.Time      `json:"delivered_at"`
	Driver           *DriverLocation `json:"driver"`
}

// GetOrder 获取订单详情
func (s *OrderService) GetOrder(ctx context.Context, orderID uint, viewer OrderViewer) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, internalError("load order failed", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !viewer.canView(order) {
		logger.Ctx(ctx).Debugw("order_view_denied", "order_id", orderID, "viewer_id", viewer.UserID, "role", viewer.Role)
		return nil, ErrOrderForbidden
	}
	return order, nil
}

// ListUserOrders 用户订单列表
func (s *OrderService) ListUserOrders(ctx context.Context, userID uint, page, pageSize int) ([]models.Order, int64, error) {
	orders, total, err := s.orderRepo.ListByUser(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
	})
	if err != nil {
		return nil, 0, internalError("list orders failed", err)
	}
	return orders, total, nil
}

// ListDriverOrders 骑手订单列表，activeOnly 时仅返回进行中的订单
func (s *OrderService) ListDriverOrders(ctx context.Context, driverID uint, activeOnly bool, page, pageSize int) ([]models.Order, int64, error) {
	filter := repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		DriverID: driverID,
	}
	if activeOnly {
		filter.Statuses = constants.DriverActiveOrderStatuses
	}
	orders, total, err := s.orderRepo.ListByDriver(filter)
	if err != nil {
		return nil, 0, internalError("list driver orders failed", err)
	}
	return orders, total, nil
}

// ListAdminOrders 管理端订单列表，日期区间覆盖起始日 00:00:00 至结束日 23:59:59
func (s *OrderService) ListAdminOrders(ctx context.Context, query AdminOrderQuery) ([]models.Order, int64, error) {
	filter := repository.OrderListFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if status := strings.ToUpper(strings.TrimSpace(query.Status)); status != "" {
		if !isValidOrderStatus(status) {
			return nil, 0, ErrInvalidOrderStatus.WithMessage("invalid order status: %s", query.Status)
		}
		filter.Status = status
	}
	if query.StartDate != nil {
		from := startOfDay(*query.StartDate)
		filter.CreatedFrom = &from
	}
	if query.EndDate != nil {
		to := endOfDay(*query.EndDate)
		filter.CreatedTo = &to
	}
	orders, total, err := s.orderRepo.ListAdmin(filter)
	if err != nil {
		return nil, 0, internalError("list admin orders failed", err)
	}
	return orders, total, nil
}

// TrackOrder 订单追踪（状态与骑手位置）
func (s *OrderService) TrackOrder(ctx context.Context, orderID, userID uint) (*OrderTracking, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, internalError("load order failed", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != userID {
		return nil, ErrOrderForbidden
	}

	tracking := &OrderTracking{
		OrderID:          order.ID,
		OrderNo:          order.OrderNo,
		Status:           order.Status,
		EstimatedMinutes: order.EstimatedMinutes,
		DeliveryLat:      order.DeliveryLat,
		DeliveryLng:      order.DeliveryLng,
		DeliveredAt:      order.DeliveredAt,
	}
	if order.Driver != nil {
		tracking.Driver = &DriverLocation{
			ID:            order.Driver.ID,
			Name:          order.Driver.Name,
			Phone:         order.Driver.Phone,
			VehicleNumber: order.Driver.VehicleNumber,
			Latitude:      order.Driver.CurrentLat,
			Longitude:     order.Driver.CurrentLng,
		}
	}
	return tracking, nil
}

// History 订单状态记录（按时间正序）
func (s *OrderService) History(ctx context.Context, orderID uint, viewer OrderViewer) ([]models.OrderStatusHistory, error) {
	if _, err := s.GetOrder(ctx, orderID, viewer); err != nil {
		return nil, err
	}
	rows, err := s.historyRepo.ListByOrder(orderID)
	if err != nil {
		return nil, internalError("list order history failed", err)
	}
	return rows, nil
}

// DeleteOrder 删除订单及其状态记录、优惠券使用记录、门店关联与订单项
func (s *OrderService) DeleteOrder(ctx context.Context, orderID uint) error {
	var order *models.Order
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		locked, err := s.orderRepo.WithTx(tx).GetByIDForUpdate(orderID)
		if err != nil {
			return internalError("load order failed", err)
		}
		if locked == nil {
			return ErrOrderNotFound
		}
		if err := s.historyRepo.WithTx(tx).DeleteByOrderID(orderID); err != nil {
			return internalError("delete order history failed", err)
		}
		if err := s.usageRepo.WithTx(tx).DeleteByOrderID(orderID); err != nil {
			return internalError("delete coupon usage failed", err)
		}
		if err := s.orderRepo.WithTx(tx).Delete(orderID); err != nil {
			return internalError("delete order failed", err)
		}
		order = locked
		return nil
	})
	if err != nil {
		return err
	}

	logger.Ctx(ctx).Infow("order_deleted", "order_id", order.ID, "order_no", order.OrderNo)
	s.emit(ctx, newOrderEvent(constants.OrderEventDeleted, order, order.Status))
	return nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
