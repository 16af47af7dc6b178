package usecase

import (
	"errors"
	"fmt"
)

// 業務エラーの種類。handlerがHTTPステータスとjsend種別に写す。
type ErrorKind string

const (
	KindValidation        ErrorKind = "VALIDATION"
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindInsufficientStock ErrorKind = "INSUFFICIENT_STOCK"
	KindInvalidState      ErrorKind = "INVALID_STATE"
	KindUnauthenticated   ErrorKind = "UNAUTHENTICATED"
	KindForbidden         ErrorKind = "FORBIDDEN"
	KindConflict          ErrorKind = "CONFLICT"
	KindInternal          ErrorKind = "INTERNAL"
)

type Error struct {
	Kind    ErrorKind
	Message string

	// KindInsufficientStockのとき、購入可能な残数
	Available int64

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func NewValidationError(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

func NewNotFoundError(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// 在庫不足。availableに現在の残数を載せて返す。
func NewInsufficientStockError(name string, available int64) error {
	return &Error{
		Kind:      KindInsufficientStock,
		Message:   fmt.Sprintf("insufficient stock for %s. available: %d", name, available),
		Available: available,
	}
}

func NewInvalidStateError(message string) error {
	return &Error{Kind: KindInvalidState, Message: message}
}

func NewUnauthenticatedError() error {
	return &Error{Kind: KindUnauthenticated, Message: "unauthorized"}
}

func NewForbiddenError(message string) error {
	return &Error{Kind: KindForbidden, Message: message}
}

func NewConflictError(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

// 想定外の失敗。原因は内側に保持し、クライアントには出さない。
func NewInternalError(cause error) error {
	return &Error{Kind: KindInternal, Message: "internal error", cause: cause}
}

func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// 種類の判定ヘルパ
func IsKind(err error, kind ErrorKind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == kind
}
