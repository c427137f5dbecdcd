package public

import "github.com/dujiao-next/delivery/internal/provider"

// Handler 用户侧接口处理器入口（顾客、登录、通知）
type Handler struct {
	*provider.Container
}

// New 创建用户侧处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
