package service

import (
	"context"

	"github.com/dujiao-next/delivery/internal/cache"
	"github.com/dujiao-next/delivery/internal/logger"
	"github.com/dujiao-next/delivery/internal/models"
	"github.com/dujiao-next/delivery/internal/repository"
)

// UserAdminService 后台用户管理
type UserAdminService struct {
	userRepo repository.UserRepository
}

// NewUserAdminService 创建用户管理服务
func NewUserAdminService(userRepo repository.UserRepository) *UserAdminService {
	return &UserAdminService{userRepo: userRepo}
}

// UpdateStatus 启用或停用用户，并清除鉴权快照使下一次请求生效
func (s *UserAdminService) UpdateStatus(ctx context.Context, userID uint, isActive bool, actorID uint) (*models.User, error) {
	if userID == 0 {
		return nil, ErrUserNotFound
	}
	if !isActive && userID == actorID {
		return nil, ErrSelfDeactivation
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, internalError("load user failed", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.IsActive != isActive {
		if err := s.userRepo.UpdateStatus(userID, isActive); err != nil {
			return nil, internalError("update user status failed", err)
		}
		user.IsActive = isActive
	}
	if err := cache.DelUserAuthState(ctx, userID); err != nil {
		logger.Ctx(ctx).Warnw("user_auth_state_invalidate_failed", "user_id", userID, "error", err)
	}
	logger.Ctx(ctx).Infow("user_status_updated", "user_id", userID, "is_active", isActive, "actor_id", actorID)
	return user, nil
}
