package service

import (
	"context"
	"time"

	"github.com/dujiao-next/delivery/internal/events"
	"github.com/dujiao-next/delivery/internal/models"
	"github.com/dujiao-next/delivery/internal/queue"
)

// OrderEventEmitter 订单事件出口
type OrderEventEmitter interface {
	Emit(ctx context.Context, event events.OrderEvent) error
}

// QueueOrderEventEmitter 通过 asynq 异步投递订单事件；队列未启用时直接发布
type QueueOrderEventEmitter struct {
	queueClient *queue.Client
	publisher   events.Publisher
}

// NewOrderEventEmitter 创建订单事件出口
func NewOrderEventEmitter(queueClient *queue.Client, publisher events.Publisher) *QueueOrderEventEmitter {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &QueueOrderEventEmitter{queueClient: queueClient, publisher: publisher}
}

// Emit 投递事件
func (e *QueueOrderEventEmitter) Emit(ctx context.Context, event events.OrderEvent) error {
	if e == nil {
		return nil
	}
	if e.queueClient.Enabled() {
		return e.queueClient.EnqueueOrderEvent(event)
	}
	return e.publisher.Publish(ctx, event)
}

func newOrderEvent(eventType string, order *models.Order, fromStatus string) events.OrderEvent {
	return events.OrderEvent{
		Type:       eventType,
		OrderID:    order.ID,
		OrderNo:    order.OrderNo,
		UserID:     order.UserID,
		DriverID:   order.DriverID,
		FromStatus: fromStatus,
		Status:     order.Status,
		Total:      order.TotalAmount.String(),
		OccurredAt: time.Now(),
	}
}
