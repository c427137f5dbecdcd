package public

import (
	"strconv"

	handlershared "github.com/dujiao-next/delivery/internal/http/handlers/shared"
	"github.com/dujiao-next/delivery/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListNotifications 当前用户通知列表
func (h *Handler) ListNotifications(c *gin.Context) {
	uid, ok := handlershared.GetUserID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.QueryPagination(c)
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread", "false"))

	rows, total, err := h.NotificationService.List(uid, page, pageSize, unreadOnly)
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// MarkNotificationRead 标记通知已读
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	uid, ok := handlershared.GetUserID(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.NotificationService.MarkRead(id, uid); err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"read": true})
}
