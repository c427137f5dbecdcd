package shared

import (
	"errors"

	"github.com/dujiao-next/delivery/internal/http/response"
	"github.com/dujiao-next/delivery/internal/logger"
	"github.com/dujiao-next/delivery/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const internalErrorMessage = "internal server error"

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// CodeForKind 业务错误分类对应的响应码
func CodeForKind(kind service.ErrorKind) int {
	switch kind {
	case service.KindInvalidInput:
		return response.CodeBadRequest
	case service.KindUnauthorized:
		return response.CodeUnauthorized
	case service.KindForbidden:
		return response.CodeForbidden
	case service.KindNotFound:
		return response.CodeNotFound
	case service.KindConflict:
		return response.CodeConflict
	default:
		return response.CodeInternal
	}
}

// RespondServiceError 按业务错误分类返回响应；内部错误仅记录日志并返回通用提示。
func RespondServiceError(c *gin.Context, err error) {
	var bizErr *service.Error
	if !errors.As(err, &bizErr) || bizErr.Kind == service.KindInternal {
		RespondError(c, response.CodeInternal, internalErrorMessage, err)
		return
	}
	response.Error(c, CodeForKind(bizErr.Kind), bizErr.Message)
}
