package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dujiao-next/delivery/internal/config"
	"github.com/dujiao-next/delivery/internal/constants"
	"github.com/dujiao-next/delivery/internal/models"
)

func countHistory(t *testing.T, f *orderFixture, orderID uint) []models.OrderStatusHistory {
	t.Helper()
	var rows []models.OrderStatusHistory
	if err := f.db.Where("order_id = ?", orderID).Order("id asc").Find(&rows).Error; err != nil {
		t.Fatalf("load history failed: %v", err)
	}
	return rows
}

func TestTransitionStatusAppendsOneHistoryEntry(t *testing.T) {
	f := setupOrderServiceTest(t, config.OrderConfig{})
	order := f.placeSimpleOrder(t, "")
	ctx := context.Background()

	updated, err := f.svc.TransitionStatus(ctx, order.ID, "preparing", f.driver.ID, "")
	if err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if updated.Status != constants.OrderStatusPreparing {
		t.Fatalf("unexpected status: %s", updated.Status)
	}

	rows := countHistory(t, f, order.ID)
	if len(rows) != 2 {
		t.Fatalf("expected 2 history rows, got %d", len(rows))
	}
	last := rows[1]
	if last.FromStatus != constants.OrderStatusPending || last.ToStatus != constants.OrderStatusPreparing {
		t.Fatalf("unexpected history entry: %+v", last)
	}
	if last.ActorID == nil || *last.ActorID != f.driver.ID {
		t.Fatalf("unexpected actor: %+v", last.ActorID)
	}
	if last.Note == "" {
		t.Fatalf("expected default note")
	}

	if got := f.emitter.types(); len(got) != 2 || got[1] != constants.OrderEventStatusChanged {
		t.Fatalf("unexpected events: %v", got)
	}
}

func TestTransitionStatusRejectsUnknownStatusAndOrder(t *testing.T) {
	f := setupOrderServiceTest(t, config.OrderConfig{})
	order := f.placeSimpleOrder(t, "")
	ctx := context.Background()

	if _, err := f.svc.TransitionStatus(ctx, order.ID, "LOST", 1, ""); !errors.Is(err, ErrInvalidOrderStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}
	if _, err := f.svc.TransitionStatus(ctx, 999, constants.OrderStatusConfirmed, 1, ""); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if rows := countHistory(t, f, order.ID); len(rows) != 1 {
		t.Fatalf("failed transitions must not write history, got %d", len(rows))
	}
}

func TestTransitionStatusAsChecksAssignedDriver(t *testing.T) {
	f := setupOrderServiceTest(t, config.OrderConfig{})
	order := f.placeSimpleOrder(t, "")
	ctx := context.Background()
	asDriver := OrderViewer{UserID: f.driver.ID, Role: constants.UserTypeDriver}

	if _, err := f.svc.TransitionStatusAs(ctx, order.ID, constants.OrderStatusPreparing, asDriver, ""); !errors.Is(err, ErrOrderForbidden) {
		t.Fatalf("unassigned driver want forbidden, got %v", err)
	}
	if rows := countHistory(t, f, order.ID); len(rows) != 1 {
		t.Fatalf("rejected transition must not write history, got %d", len(rows))
	}

	if _, err := f.svc.AssignDriver(ctx, order.ID, f.driver.ID, 1); err != nil {
		t.Fatalf("assign driver failed: %v", err)
	}
	updated, err := f.svc.TransitionStatusAs(ctx, order.ID, constants.OrderStatusPreparing, asDriver, "")
	if err != nil {
		t.Fatalf("assigned driver transition failed: %v", err)
	}
	if updated.Status != constants.OrderStatusPreparing {
		t.Fatalf("unexpected status: %s", updated.Status)
	}

	second := models.User{Name: "Eve", Phone: "201", UserType: constants.UserTypeDriver, PasswordHash: "x", IsActive: true}
	if err := f.db.Create(&second).Error; err != nil {
		t.Fatalf("create driver failed: %v", err)
	}
	if _, err := f.svc.AssignDriver(ctx, order.ID, second.ID, 1); err != nil {
		t.Fatalf("reassign driver failed: %v", err)
	}
	before := len(countHistory(t, f, order.ID))
	if _, err := f.svc.TransitionStatusAs(ctx, order.ID, constants.OrderStatusOutForDelivery, asDriver, ""); !errors.Is(err, ErrOrderForbidden) {
		t.Fatalf("previous driver want forbidden, got %v", err)
	}
	if rows := countHistory(t, f, order.ID); len(rows) != before {
		t.Fatalf("rejected transition wrote history: %d -> %d", before, len(rows))
	}

	admin := OrderViewer{UserID: 1, Role: constants.UserTypeAdmin}
	if _, err := f.svc.TransitionStatusAs(ctx, order.ID, constants.OrderStatusOutForDelivery, admin, ""); err != nil {
		t.Fatalf("admin transition failed: %v", err)
	}
}

func TestTransitionStatusDeliveredTwiceCountsOnce(t *testing.T) {
	f := setupOrderServiceTest(t, config.OrderConfig{})
	order := f.placeSimpleOrder(t, "")
	ctx := context.Background()

	if _, err := f.svc.AssignDriver(ctx, order.ID, f.driver.ID, 1); err != nil {
		t.Fatalf("assign driver failed: %v", err)
	}
	delivered, err := f.svc.TransitionStatus(ctx, order.ID, constants.OrderStatusDelivered, f.driver.ID, "left at door")
	if err != nil {
		t.Fatalf("deliver failed: %v", err)
	}
	if delivered.DeliveredAt == nil {
		t.Fatalf("delivered_at should be stamped")
	}
	if _, err := f.svc.TransitionStatus(ctx, order.ID, constants.OrderStatusDelivered, f.driver.ID, ""); err != nil {
		t.Fatalf("second deliver failed: %v", err)
	}

	var driver models.User
	f.db.First(&driver, f.driver.ID)
	if driver.TotalDeliveries != 1 {
		t.Fatalf("expected 1 delivery, got %d", driver.TotalDeliveries)
	}
	// 下单 + 指派 + 两次送达
	if rows := countHistory(t, f, order.ID); len(rows) != 4 {
		t.Fatalf("expected 4 history rows, got %d", len(rows))
	}
}

func TestTransitionStatusStrictGraph(t *testing.T) {
	f := setupOrderServiceTest(t, config.OrderConfig{StrictTransitions: true})
	order := f.placeSimpleOrder(t, "")
	ctx := context.Background()

	if _, err := f.svc.TransitionStatus(ctx, order.ID, constants.OrderStatusDelivered, 1, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if _, err := f.svc.TransitionStatus(ctx, order.ID, constants.OrderStatusConfirmed, 1, ""); err != nil {
		t.Fatalf("forward transition failed: %v", err)
	}
	if _, err := f.svc.TransitionStatus(ctx, order.ID, constants.OrderStatusCancelled, 1, ""); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if _, err := f.svc.TransitionStatus(ctx, order.ID, constants.OrderStatusPending, 1, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("terminal state must stay terminal, got %v", err)
	}
}

func TestTransitionStatusPermissiveByDefault(t *testing.T) {
	f := setupOrderServiceTest(t, config.OrderConfig{})
	order := f.placeSimpleOrder(t, "")
	ctx := context.Background()

	if _, err := f.svc.TransitionStatus(ctx, order.ID, constants.OrderStatusCancelled, 1, ""); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if _, err := f.svc.TransitionStatus(ctx, order.ID, constants.OrderStatusPending, 1, "reopened"); err != nil {
		t.Fatalf("reopen should be allowed by default: %v", err)
	}
}

func TestAssignDriverConfirmsPendingOrder(t *testing.T) {
	f := setupOrderServiceTest(t, config.OrderConfig{})
	order := f.placeSimpleOrder(t, "")
	ctx := context.Background()

	updated, err := f.svc.AssignDriver(ctx, order.ID, f.driver.ID, 1)
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if updated.Status != constants.OrderStatusConfirmed {
		t.Fatalf("expected CONFIRMED, got %s", updated.Status)
	}
	if updated.DriverID == nil || *updated.DriverID != f.driver.ID {
		t.Fatalf("driver not set: %+v", updated.DriverID)
	}
	rows := countHistory(t, f, order.ID)
	if len(rows) != 2 || rows[1].ToStatus != constants.OrderStatusConfirmed || rows[1].Note != "Driver assigned" {
		t.Fatalf("unexpected history: %+v", rows)
	}

	assigned := f.notifier.byType(constants.NotificationTypeDriverAssignment)
	if len(assigned) != 1 || assigned[0].UserID != f.driver.ID || assigned[0].Title != "New Order Assigned" {
		t.Fatalf("unexpected driver notifications: %+v", assigned)
	}

	// 已确认订单再次指派不追加记录
	if _, err := f.svc.AssignDriver(ctx, order.ID, f.driver.ID, 1); err != nil {
		t.Fatalf("reassign failed: %v", err)
	}
	if rows := countHistory(t, f, order.ID); len(rows) != 2 {
		t.Fatalf("reassign must not write history, got %d", len(rows))
	}
}

func TestAssignDriverValidatesDriver(t *testing.T) {
	f := setupOrderServiceTest(t, config.OrderConfig{})
	order := f.placeSimpleOrder(t, "")
	ctx := context.Background()

	if _, err := f.svc.AssignDriver(ctx, order.ID, 999, 1); !errors.Is(err, ErrDriverNotFound) {
		t.Fatalf("expected driver not found, got %v", err)
	}
	if _, err := f.svc.AssignDriver(ctx, order.ID, f.customer.ID, 1); !errors.Is(err, ErrNotADriver) {
		t.Fatalf("expected not a driver, got %v", err)
	}
	if _, err := f.svc.AssignDriver(ctx, 999, f.driver.ID, 1); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected order not found, got %v", err)
	}
}
