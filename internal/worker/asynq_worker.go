package worker

import (
	"context"

	"github.com/dujiao-next/delivery/internal/logger"
	"github.com/dujiao-next/delivery/internal/provider"
	"github.com/dujiao-next/delivery/internal/queue"
	"github.com/dujiao-next/delivery/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskNotificationDispatch, c.handleNotificationDispatch)
	mux.HandleFunc(queue.TaskOrderEventPublish, c.handleOrderEventPublish)
}

func (c *Consumer) handleNotificationDispatch(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_notification_dispatch_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseNotificationPayload(task)
	if err != nil {
		logger.Warnw("worker_notification_dispatch_unmarshal_failed", "error", err)
		return err
	}
	if payload.UserID == 0 {
		logger.Debugw("worker_notification_dispatch_skip_invalid_payload", "user_id", payload.UserID)
		return nil
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_notification_dispatch_skip_service_nil", "user_id", payload.UserID)
		return nil
	}
	err = c.NotificationService.Persist(ctx, service.NotifyInput{
		UserID:        payload.UserID,
		Title:         payload.Title,
		Message:       payload.Message,
		Type:          payload.Type,
		ReferenceType: payload.ReferenceType,
		ReferenceID:   payload.ReferenceID,
	})
	if err != nil {
		logger.Warnw("worker_notification_dispatch_persist_failed",
			"user_id", payload.UserID,
			"type", payload.Type,
			"reference_id", payload.ReferenceID,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleOrderEventPublish(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_event_publish_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	event, err := queue.ParseOrderEventPayload(task)
	if err != nil {
		logger.Warnw("worker_order_event_publish_unmarshal_failed", "error", err)
		return err
	}
	if event.OrderID == 0 || event.Type == "" {
		logger.Debugw("worker_order_event_publish_skip_invalid_payload", "order_id", event.OrderID, "type", event.Type)
		return nil
	}
	if c.EventPublisher == nil {
		logger.Warnw("worker_order_event_publish_skip_publisher_nil", "order_id", event.OrderID)
		return nil
	}
	if err := c.EventPublisher.Publish(ctx, event); err != nil {
		logger.Warnw("worker_order_event_publish_failed",
			"order_id", event.OrderID,
			"order_no", event.OrderNo,
			"type", event.Type,
			"error", err,
		)
		return err
	}
	return nil
}
