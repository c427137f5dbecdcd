package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dujiao-next/delivery/internal/constants"
	"github.com/dujiao-next/delivery/internal/logger"
	"github.com/dujiao-next/delivery/internal/models"

	"gorm.io/gorm"
)

// forwardTransitions 严格模式下允许的状态流转
var forwardTransitions = map[string][]string{
	constants.OrderStatusPending:        {constants.OrderStatusConfirmed, constants.OrderStatusCancelled},
	constants.OrderStatusConfirmed:      {constants.OrderStatusPreparing, constants.OrderStatusCancelled},
	constants.OrderStatusPreparing:      {constants.OrderStatusOutForDelivery, constants.OrderStatusCancelled},
	constants.OrderStatusOutForDelivery: {constants.OrderStatusDelivered, constants.OrderStatusCancelled},
}

const driverAssignedNote = "Driver assigned"

// isValidOrderStatus 校验状态值
func isValidOrderStatus(status string) bool {
	for _, item := range constants.OrderStatuses {
		if item == status {
			return true
		}
	}
	return false
}

// canTransition 判断严格模式下是否允许流转
func canTransition(from, to string) bool {
	for _, next := range forwardTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionStatus 更新订单状态并追加一条状态记录
func (s *OrderService) TransitionStatus(ctx context.Context, orderID uint, newStatus string, actorID uint, note string) (*models.Order, error) {
	return s.transition(ctx, orderID, newStatus, actorID, note, nil)
}

// TransitionStatusAs 以查看者身份更新状态，归属在加锁后的订单行上校验
func (s *OrderService) TransitionStatusAs(ctx context.Context, orderID uint, newStatus string, viewer OrderViewer, note string) (*models.Order, error) {
	return s.transition(ctx, orderID, newStatus, viewer.UserID, note, &viewer)
}

func (s *OrderService) transition(ctx context.Context, orderID uint, newStatus string, actorID uint, note string, viewer *OrderViewer) (*models.Order, error) {
	target := strings.ToUpper(strings.TrimSpace(newStatus))
	if !isValidOrderStatus(target) {
		return nil, ErrInvalidOrderStatus.WithMessage("invalid order status: %s", newStatus)
	}
	note = strings.TrimSpace(note)
	if note == "" {
		note = fmt.Sprintf("Status updated by user %d", actorID)
	}

	var order *models.Order
	var fromStatus string
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		locked, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return internalError("load order failed", err)
		}
		if locked == nil {
			return ErrOrderNotFound
		}
		if viewer != nil && !viewer.canView(locked) {
			return ErrOrderForbidden
		}
		fromStatus = locked.Status
		if s.cfg.StrictTransitions && !canTransition(fromStatus, target) {
			return ErrInvalidTransition.WithMessage("cannot move order from %s to %s", fromStatus, target)
		}

		now := s.now()
		updates := map[string]interface{}{
			"status":     target,
			"updated_at": now,
		}
		if target == constants.OrderStatusDelivered && fromStatus != constants.OrderStatusDelivered {
			updates["delivered_at"] = now
			locked.DeliveredAt = &now
			if locked.DriverID != nil {
				if err := s.userRepo.WithTx(tx).IncrementDeliveryCount(*locked.DriverID); err != nil {
					return internalError("increment driver deliveries failed", err)
				}
			}
		}
		if err := orderRepo.Update(locked.ID, updates); err != nil {
			return internalError("update order status failed", err)
		}
		if err := s.appendHistory(tx, locked.ID, fromStatus, target, note, actorID, now); err != nil {
			return err
		}
		locked.Status = target
		locked.UpdatedAt = now
		order = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Infow("order_status_changed",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"from_status", fromStatus,
		"to_status", order.Status,
		"actor_id", actorID,
	)

	s.notify(ctx, order, NotifyInput{
		UserID:        order.UserID,
		Title:         "Order Status Updated",
		Message:       fmt.Sprintf("Your order #%s is now %s", order.OrderNo, order.Status),
		Type:          constants.NotificationTypeOrderStatus,
		ReferenceType: constants.NotificationReferenceOrder,
		ReferenceID:   order.ID,
	})
	s.emit(ctx, newOrderEvent(constants.OrderEventStatusChanged, order, fromStatus))

	return s.reload(order), nil
}

// AssignDriver 指派骑手，待确认订单同时转为已确认
func (s *OrderService) AssignDriver(ctx context.Context, orderID, driverID, actorID uint) (*models.Order, error) {
	driver, err := s.userRepo.GetByID(driverID)
	if err != nil {
		return nil, internalError("load driver failed", err)
	}
	if driver == nil {
		return nil, ErrDriverNotFound
	}
	if !driver.IsDriver() {
		return nil, ErrNotADriver
	}

	var order *models.Order
	var fromStatus string
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		locked, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return internalError("load order failed", err)
		}
		if locked == nil {
			return ErrOrderNotFound
		}
		fromStatus = locked.Status

		now := s.now()
		updates := map[string]interface{}{
			"driver_id":  driver.ID,
			"updated_at": now,
		}
		confirm := locked.Status == constants.OrderStatusPending
		if confirm {
			updates["status"] = constants.OrderStatusConfirmed
		}
		if err := orderRepo.Update(locked.ID, updates); err != nil {
			return internalError("assign driver failed", err)
		}
		if confirm {
			if err := s.appendHistory(tx, locked.ID, fromStatus, constants.OrderStatusConfirmed, driverAssignedNote, actorID, now); err != nil {
				return err
			}
			locked.Status = constants.OrderStatusConfirmed
		}
		locked.DriverID = &driver.ID
		locked.UpdatedAt = now
		order = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Infow("order_driver_assigned",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"driver_id", driver.ID,
		"status", order.Status,
		"actor_id", actorID,
	)

	s.notify(ctx, order, NotifyInput{
		UserID:        driver.ID,
		Title:         "New Order Assigned",
		Message:       fmt.Sprintf("You have been assigned to Order #%s", order.OrderNo),
		Type:          constants.NotificationTypeDriverAssignment,
		ReferenceType: constants.NotificationReferenceOrder,
		ReferenceID:   order.ID,
	})
	s.emit(ctx, newOrderEvent(constants.OrderEventDriverAssigned, order, fromStatus))

	return s.reload(order), nil
}

func (s *OrderService) appendHistory(tx *gorm.DB, orderID uint, from, to, note string, actorID uint, at time.Time) error {
	entry := &models.OrderStatusHistory{
		OrderID:    orderID,
		FromStatus: from,
		ToStatus:   to,
		Note:       note,
		CreatedAt:  at,
	}
	if actorID != 0 {
		entry.ActorID = &actorID
	}
	if err := s.historyRepo.WithTx(tx).Create(entry); err != nil {
		return internalError("create order history failed", err)
	}
	return nil
}

// reload 重新读取订单详情，失败时返回原对象
func (s *OrderService) reload(order *models.Order) *models.Order {
	full, err := s.orderRepo.GetByID(order.ID)
	if err != nil || full == nil {
		return order
	}
	return full
}
