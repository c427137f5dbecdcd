package queue

import (
	"encoding/json"

	"github.com/dujiao-next/delivery/internal/constants"
	"github.com/dujiao-next/delivery/internal/events"

	"github.com/hibiken/asynq"
)

const (
	// TaskNotificationDispatch 站内通知写入任务
	TaskNotificationDispatch = constants.TaskNotificationDispatch
	// TaskOrderEventPublish 订单事件投递任务
	TaskOrderEventPublish = constants.TaskOrderEventPublish
)

// NotificationPayload 通知任务载荷
type NotificationPayload struct {
	UserID        uint   `json:"user_id"`
	Title         string `json:"title"`
	Message       string `json:"message"`
	Type          string `json:"type"`
	ReferenceType string `json:"reference_type"`
	ReferenceID   uint   `json:"reference_id"`
}

// NewNotificationTask 创建通知任务
func NewNotificationTask(payload NotificationPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationDispatch, body), nil
}

// NewOrderEventTask 创建订单事件任务
func NewOrderEventTask(payload events.OrderEvent) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderEventPublish, body), nil
}

// ParseNotificationPayload 解析通知任务载荷
func ParseNotificationPayload(task *asynq.Task) (NotificationPayload, error) {
	var payload NotificationPayload
	err := json.Unmarshal(task.Payload(), &payload)
	return payload, err
}

// ParseOrderEventPayload 解析订单事件任务载荷
func ParseOrderEventPayload(task *asynq.Task) (events.OrderEvent, error) {
	var payload events.OrderEvent
	err := json.Unmarshal(task.Payload(), &payload)
	return payload, err
}
