package domain

import (
	"context"
	"errors"
	"net/http"
)

// Kind 错误分类，决定 HTTP 状态码
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindConflict
	KindGeocoding
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindGeocoding:
		return "geocoding"
	case KindPersistence:
		return "persistence"
	default:
		return "internal"
	}
}

// Status Kind -> HTTP
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict, KindGeocoding:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error 统一错误对象：Msg 给客户端看，Err 只进日志
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String() + " error"
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) error   { return &Error{Kind: KindValidation, Msg: msg} }
func NotFound(msg string) error     { return &Error{Kind: KindNotFound, Msg: msg} }
func Unauthorized(msg string) error { return &Error{Kind: KindUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &Error{Kind: KindForbidden, Msg: msg} }
func Conflict(msg string) error     { return &Error{Kind: KindConflict, Msg: msg} }
func Geocoding(msg string) error    { return &Error{Kind: KindGeocoding, Msg: msg} }

func Persistence(msg string, err error) error {
	return &Error{Kind: KindPersistence, Msg: msg, Err: err}
}

func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf 非 *Error 一律视为 Internal
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == k
}

// StatusOf 任意 error -> HTTP 状态码
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	// 超时优先于分类：Internal/Persistence 包着的 deadline 也是 504
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind.Status()
	}
	return http.StatusInternalServerError
}

// PublicMessage 只暴露 *Error 的 Msg，其余返回 fallback；超时统一用 fallback
func PublicMessage(err error, fallback string) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return fallback
	}
	var de *Error
	if errors.As(err, &de) && de.Msg != "" {
		return de.Msg
	}
	return fallback
}
