package driver

import "github.com/dujiao-next/delivery/internal/provider"

// Handler 骑手端接口处理器入口
type Handler struct {
	*provider.Container
}

// New 创建骑手端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
