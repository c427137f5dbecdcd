package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dujiao-next/delivery/internal/constants"
	"github.com/dujiao-next/delivery/internal/queue"
	"github.com/dujiao-next/delivery/internal/repository"
)

func TestNotifyPersistsInlineWhenQueueDisabled(t *testing.T) {
	db := openServiceTestDB(t)
	disabled, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("new queue client failed: %v", err)
	}
	svc := NewNotificationService(repository.NewNotificationRepository(db), disabled)
	ctx := context.Background()

	if err := svc.Notify(ctx, NotifyInput{
		UserID:        9,
		Title:         " Order Placed ",
		Message:       "Your order #ABC has been placed",
		Type:          constants.NotificationTypeOrderStatus,
		ReferenceType: constants.NotificationReferenceOrder,
		ReferenceID:   3,
	}); err != nil {
		t.Fatalf("notify failed: %v", err)
	}
	// 无接收人时忽略
	if err := svc.Notify(ctx, NotifyInput{Title: "nobody"}); err != nil {
		t.Fatalf("notify without user failed: %v", err)
	}

	rows, total, err := svc.List(9, 1, 20, true)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || rows[0].Title != "Order Placed" || rows[0].ReferenceID != 3 {
		t.Fatalf("unexpected notifications: total=%d rows=%+v", total, rows)
	}

	if err := svc.MarkRead(rows[0].ID, 10); !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("other user must not mark read, got %v", err)
	}
	if err := svc.MarkRead(rows[0].ID, 9); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	_, unread, err := svc.List(9, 1, 20, true)
	if err != nil || unread != 0 {
		t.Fatalf("expected no unread, got %d err=%v", unread, err)
	}
}
