package public

import (
	"time"

	handlershared "github.com/dujiao-next/delivery/internal/http/handlers/shared"
	"github.com/dujiao-next/delivery/internal/http/response"
	"github.com/dujiao-next/delivery/internal/models"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求，identifier 为手机号或邮箱
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Login 手机号或邮箱登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "invalid request", nil)
		return
	}

	user, token, expiresAt, err := h.AuthService.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		handlershared.RespondServiceError(c, err)
		return
	}

	response.Success(c, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	})
}
