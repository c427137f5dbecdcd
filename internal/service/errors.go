package service

import (
	"errors"
	"fmt"
)

// ErrorKind 业务错误分类
type ErrorKind string

const (
	KindInvalidInput ErrorKind = "invalid_input"
	KindNotFound     ErrorKind = "not_found"
	KindForbidden    ErrorKind = "forbidden"
	KindConflict     ErrorKind = "conflict"
	KindUnauthorized ErrorKind = "unauthorized"
	KindInternal     ErrorKind = "internal"
)

// Error 带分类与原因码的业务错误
type Error struct {
	Kind    ErrorKind
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 按分类与原因码匹配；原因码为空的目标匹配整类错误
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

// WithMessage 复制错误并替换提示文案
func (e *Error) WithMessage(format string, args ...interface{}) *Error {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

func newError(kind ErrorKind, reason, message string) *Error {
	return &Error{Kind: kind, Reason: reason, Message: message}
}

// internalError 包装存储或集成错误
func internalError(op string, err error) error {
	if err == nil {
		return nil
	}
	var bizErr *Error
	if errors.As(err, &bizErr) {
		return err
	}
	return &Error{Kind: KindInternal, Reason: "internal", Message: op, Err: err}
}

// KindOf 获取错误分类，非业务错误视为内部错误
func KindOf(err error) ErrorKind {
	var bizErr *Error
	if errors.As(err, &bizErr) {
		return bizErr.Kind
	}
	return KindInternal
}

// 按分类匹配的通用错误
var (
	ErrInvalidInput = &Error{Kind: KindInvalidInput, Message: "invalid input"}
	ErrNotFound     = &Error{Kind: KindNotFound, Message: "not found"}
	ErrForbidden    = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrConflict     = &Error{Kind: KindConflict, Message: "conflict"}
	ErrInternal     = &Error{Kind: KindInternal, Message: "internal error"}
)

// 下单相关错误
var (
	ErrOrderItemsEmpty    = newError(KindInvalidInput, "order_items_empty", "order must contain at least one item")
	ErrAddressRequired    = newError(KindInvalidInput, "address_required", "delivery address is required")
	ErrInvalidQuantity    = newError(KindInvalidInput, "invalid_quantity", "quantity must be at least 1")
	ErrAddressNotFound    = newError(KindNotFound, "address_not_found", "address not found")
	ErrAddressForbidden   = newError(KindForbidden, "address_forbidden", "address does not belong to user")
	ErrProductNotFound    = newError(KindNotFound, "product_not_found", "product not found")
	ErrProductUnavailable = newError(KindInvalidInput, "product_unavailable", "product is not available")
	ErrVariantNotFound    = newError(KindNotFound, "variant_not_found", "variant not found")
	ErrVariantMismatch    = newError(KindInvalidInput, "variant_mismatch", "variant does not belong to product")
	ErrVariantUnavailable = newError(KindInvalidInput, "variant_unavailable", "variant is not available")
	ErrStoreNotFound      = newError(KindNotFound, "store_not_found", "store not found")
	ErrStoreClosed        = newError(KindInvalidInput, "store_closed", "store is closed")
	ErrNoStoresProvided   = newError(KindInvalidInput, "no_stores_provided", "no stores provided")
	ErrOrderNoExhausted   = newError(KindInternal, "order_no_exhausted", "failed to allocate order number")
)

// 订单状态相关错误
var (
	ErrOrderNotFound      = newError(KindNotFound, "order_not_found", "order not found")
	ErrOrderForbidden     = newError(KindForbidden, "order_forbidden", "order does not belong to user")
	ErrInvalidOrderStatus = newError(KindInvalidInput, "invalid_status", "invalid order status")
	ErrInvalidTransition  = newError(KindInvalidInput, "invalid_transition", "status transition not allowed")
	ErrDriverNotFound     = newError(KindNotFound, "driver_not_found", "driver not found")
	ErrNotADriver         = newError(KindInvalidInput, "not_a_driver", "user is not a driver")
)

// 优惠券相关错误
var (
	ErrCouponNotFound            = newError(KindNotFound, "coupon_not_found", "coupon not found")
	ErrCouponInactive            = newError(KindInvalidInput, "coupon_inactive", "coupon is not active")
	ErrCouponNotStarted          = newError(KindInvalidInput, "coupon_not_started", "coupon is not yet valid")
	ErrCouponExpired             = newError(KindInvalidInput, "coupon_expired", "coupon has expired")
	ErrCouponLimitReached        = newError(KindInvalidInput, "coupon_limit_reached", "coupon usage limit reached")
	ErrCouponPerUserLimitReached = newError(KindInvalidInput, "coupon_per_user_limit_reached", "you have already used this coupon the maximum number of times")
	ErrCouponNotFirstOrder       = newError(KindInvalidInput, "coupon_not_first_order", "coupon is valid for first order only")
	ErrCouponMinimumNotMet       = newError(KindInvalidInput, "coupon_minimum_not_met", "order does not meet the coupon minimum amount")
	ErrCouponNotApplicable       = newError(KindInvalidInput, "coupon_not_applicable", "coupon is not applicable to this order")
	ErrCouponCodeExists          = newError(KindConflict, "coupon_code_exists", "coupon code already exists")
	ErrCouponInvalid             = newError(KindInvalidInput, "coupon_invalid", "invalid coupon definition")
)

// 认证相关错误
var (
	ErrInvalidCredentials   = newError(KindUnauthorized, "invalid_credentials", "invalid credentials")
	ErrUserDisabled         = newError(KindForbidden, "user_disabled", "user is disabled")
	ErrUserNotFound         = newError(KindNotFound, "user_not_found", "user not found")
	ErrSelfDeactivation     = newError(KindInvalidInput, "self_deactivation", "cannot deactivate your own account")
	ErrNotificationNotFound = newError(KindNotFound, "notification_not_found", "notification not found")
)
