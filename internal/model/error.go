// internal/model/error.go
package model

import (
	"errors"
	"fmt"
)

// アプリケーション固有のエラー
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInternalServer = errors.New("internal server error")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("resource conflict") // 一意制約違反・楽観ロック失敗

	// テスト受験セッション (CMI) 関連
	ErrMalformedDocument    = errors.New("malformed cmi document")
	ErrSessionClosed        = errors.New("test attempt is terminated")
	ErrInvalidState         = errors.New("invalid test attempt state")
	ErrAttemptLimitExceeded = errors.New("attempt limit exceeded")
	ErrNotSupported         = errors.New("operation not supported")
	ErrScormDisabled        = errors.New("scorm test is not enabled for task")
	ErrReviewNotAllowed     = errors.New("review is not allowed for task")
)

// AppError はクライアントに返すエラー情報と原因エラーを保持します。
type AppError struct {
	Code    string
	Message string
	Field   string
	Err     error
}

func NewAppError(code, message, field string, err error) *AppError {
	return &AppError{Code: code, Message: message, Field: field, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Detail はレスポンス用のエラー詳細を返します
func (e *AppError) Detail() ErrorDetail {
	return ErrorDetail{Code: e.Code, Message: e.Message, Field: e.Field}
}

// ErrorDetail はAPIエラーレスポンスの中身
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// APIErrorResponse はAPIエラーレスポンスの構造体
type APIErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
