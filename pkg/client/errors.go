package client

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failures the transport client reports.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNotFound
	KindUnauthorized
	KindRateLimited
	KindServiceUnavailable
	KindNetworkFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindRateLimited:
		return "rate_limited"
	case KindServiceUnavailable:
		return "service_unavailable"
	case KindNetworkFailure:
		return "network_failure"
	default:
		return "unknown"
	}
}

// Message is the user-facing text for the kind.
func (k ErrorKind) Message() string {
	switch k {
	case KindNotFound:
		return "找不到該城市，請檢查城市名稱"
	case KindUnauthorized:
		return "API 金鑰無效，請檢查設定"
	case KindRateLimited:
		return "請求次數過多，請稍後再試"
	case KindServiceUnavailable:
		return "天氣服務暫時無法使用"
	case KindNetworkFailure:
		return "網路連線失敗，請檢查網路狀態"
	default:
		return "發生未知錯誤"
	}
}

// APIError is returned by every client call. Error() yields only the
// user-facing message; the underlying cause is kept for logs via Unwrap.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	return e.Kind.Message()
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches on kind so callers can write errors.Is(err, client.ErrNotFound).
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Detail describes the cause for logging.
func (e *APIError) Detail() string {
	if e.Err == nil {
		return fmt.Sprintf("%s (status %d)", e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d): %v", e.Kind, e.StatusCode, e.Err)
}

var (
	ErrNotFound           = &APIError{Kind: KindNotFound}
	ErrUnauthorized       = &APIError{Kind: KindUnauthorized}
	ErrRateLimited        = &APIError{Kind: KindRateLimited}
	ErrServiceUnavailable = &APIError{Kind: KindServiceUnavailable}
	ErrNetworkFailure     = &APIError{Kind: KindNetworkFailure}
	ErrUnknown            = &APIError{Kind: KindUnknown}
)

// KindOf reports the kind of err, or KindUnknown when err is not an APIError.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

func kindForStatus(status int) ErrorKind {
	switch status {
	case 404:
		return KindNotFound
	case 401:
		return KindUnauthorized
	case 429:
		return KindRateLimited
	default:
		return KindServiceUnavailable
	}
}
