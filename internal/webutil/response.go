// internal/webutil/response.go
package webutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"go_scorm_attempt_keep/internal/model"

	"github.com/go-playground/validator/v10"
)

// HandleError はエラーを解釈し、適切なJSONエラーレスポンスを返します。
// アプリケーションのエラーハンドリングの中心です。
func HandleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	statusCode := MapErrorToStatusCode(err)

	var errResp model.APIErrorResponse
	var appErr *model.AppError

	if errors.As(err, &appErr) {
		errResp = model.APIErrorResponse{Error: appErr.Detail()}
		if statusCode >= http.StatusInternalServerError {
			logger.Error("Request failed with internal error", "error", err, "code", appErr.Code)
		}
	} else if code, message, ok := defaultDetail(err); ok {
		// AppError でラップされていないドメインエラー
		errResp = model.APIErrorResponse{Error: model.ErrorDetail{Code: code, Message: message}}
	} else {
		// 予期せぬエラーは詳細をログにだけ出す
		logger.Error("Unhandled error", "error", err)
		errResp = model.APIErrorResponse{
			Error: model.ErrorDetail{
				Code:    "INTERNAL_SERVER_ERROR",
				Message: "サーバー内部でエラーが発生しました。",
			},
		}
	}

	RespondWithJSON(w, statusCode, errResp, logger)
}

// MapErrorToStatusCode はアプリケーションエラーをHTTPステータスコードにマッピングします
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidInput), errors.Is(err, model.ErrMalformedDocument):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrSessionClosed),
		errors.Is(err, model.ErrInvalidState),
		errors.Is(err, model.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, model.ErrAttemptLimitExceeded),
		errors.Is(err, model.ErrScormDisabled),
		errors.Is(err, model.ErrReviewNotAllowed),
		errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, model.ErrNotSupported):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// defaultDetail はセンチネルエラーに対応するコードとメッセージを返します
func defaultDetail(err error) (string, string, bool) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return "NOT_FOUND", "リソースが見つかりません。", true
	case errors.Is(err, model.ErrMalformedDocument):
		return "MALFORMED_CMI_DATAMODEL", "CMIデータの形式が正しくありません。", true
	case errors.Is(err, model.ErrInvalidInput):
		return "INVALID_INPUT", "入力内容が正しくありません。", true
	case errors.Is(err, model.ErrSessionClosed):
		return "TEST_ATTEMPT_TERMINATED", "このテストは既に終了しています。", true
	case errors.Is(err, model.ErrInvalidState):
		return "INVALID_STATE", "現在の状態ではこの操作はできません。", true
	case errors.Is(err, model.ErrConflict):
		return "CONFLICT", "他の更新と競合しました。", true
	case errors.Is(err, model.ErrAttemptLimitExceeded):
		return "ATTEMPT_LIMIT_EXCEEDED", "受験回数の上限に達しています。", true
	case errors.Is(err, model.ErrScormDisabled):
		return "SCORM_DISABLED", "このタスクではテストが有効になっていません。", true
	case errors.Is(err, model.ErrReviewNotAllowed):
		return "REVIEW_NOT_ALLOWED", "このタスクではテストの見直しは許可されていません。", true
	case errors.Is(err, model.ErrForbidden):
		return "FORBIDDEN", "この操作を行う権限がありません。", true
	case errors.Is(err, model.ErrNotSupported):
		return "NOT_SUPPORTED", "この操作はサポートされていません。", true
	default:
		return "", "", false
	}
}

// RespondWithJSON はJSONレスポンスを返します
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error marshaling JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":"INTERNAL_SERVER_ERROR","message":"レスポンス生成中にエラーが発生しました。"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// NewValidationErrorResponse はバリデーションエラーを日本語メッセージの AppError に変換します
func NewValidationErrorResponse(errs validator.ValidationErrors) *model.AppError {
	fields := make([]string, 0, len(errs))
	messages := make([]string, 0, len(errs))

	for _, err := range errs {
		fields = append(fields, err.Field())
		if Trans != nil {
			messages = append(messages, err.Translate(Trans))
		} else {
			messages = append(messages, fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", err.Field(), err.Tag()))
		}
	}

	return model.NewAppError(
		"VALIDATION_ERROR",
		strings.Join(messages, " "),
		strings.Join(fields, ","),
		model.ErrInvalidInput,
	)
}
