package service

import (
	"context"
	"strings"

	"github.com/dujiao-next/delivery/internal/logger"
	"github.com/dujiao-next/delivery/internal/models"
	"github.com/dujiao-next/delivery/internal/queue"
	"github.com/dujiao-next/delivery/internal/repository"
)

// NotifyInput 通知参数
type NotifyInput struct {
	UserID        uint
	Title         string
	Message       string
	Type          string
	ReferenceType string
	ReferenceID   uint
}

// Notifier 通知分发接口，调用方记录并吞掉失败
type Notifier interface {
	Notify(ctx context.Context, input NotifyInput) error
}

// NotificationService 站内通知服务
type NotificationService struct {
	repo        repository.NotificationRepository
	queueClient *queue.Client
}

// NewNotificationService 创建通知服务
func NewNotificationService(repo repository.NotificationRepository, queueClient *queue.Client) *NotificationService {
	return &NotificationService{repo: repo, queueClient: queueClient}
}

// Notify 队列可用时异步写入，否则直接落库
func (s *NotificationService) Notify(ctx context.Context, input NotifyInput) error {
	if s == nil || input.UserID == 0 {
		return nil
	}
	if s.queueClient.Enabled() {
		return s.queueClient.EnqueueNotification(queue.NotificationPayload{
			UserID:        input.UserID,
			Title:         input.Title,
			Message:       input.Message,
			Type:          input.Type,
			ReferenceType: input.ReferenceType,
			ReferenceID:   input.ReferenceID,
		})
	}
	return s.Persist(ctx, input)
}

// Persist 写入通知记录（worker 消费任务时调用）
func (s *NotificationService) Persist(ctx context.Context, input NotifyInput) error {
	if s == nil || s.repo == nil || input.UserID == 0 {
		return nil
	}
	row := &models.Notification{
		UserID:        input.UserID,
		Title:         strings.TrimSpace(input.Title),
		Message:       input.Message,
		Type:          input.Type,
		ReferenceType: input.ReferenceType,
		ReferenceID:   input.ReferenceID,
	}
	if err := s.repo.Create(row); err != nil {
		return internalError("create notification failed", err)
	}
	logger.Ctx(ctx).Debugw("notification_persisted", "user_id", input.UserID, "type", input.Type, "reference_id", input.ReferenceID)
	return nil
}

// List 用户通知列表
func (s *NotificationService) List(userID uint, page, pageSize int, unreadOnly bool) ([]models.Notification, int64, error) {
	rows, total, err := s.repo.List(repository.NotificationListFilter{
		Page:       page,
		PageSize:   pageSize,
		UserID:     userID,
		UnreadOnly: unreadOnly,
	})
	if err != nil {
		return nil, 0, internalError("list notifications failed", err)
	}
	return rows, total, nil
}

// MarkRead 标记通知已读
func (s *NotificationService) MarkRead(id, userID uint) error {
	ok, err := s.repo.MarkRead(id, userID)
	if err != nil {
		return internalError("mark notification read failed", err)
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}
