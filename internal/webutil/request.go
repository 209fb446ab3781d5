package webutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go_scorm_attempt_keep/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// maxRequestBodyBytes はCMIデータを含むリクエストボディの上限
const maxRequestBodyBytes = 4 << 20

// DecodeJSONBody はリクエストボディをデコードしてバリデーションします
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return model.NewAppError("INVALID_INPUT", "リクエストボディが必要です。", "", model.ErrInvalidInput)
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return model.NewAppError("INVALID_INPUT", "リクエストボディのJSONが不正です。", "", fmt.Errorf("%w: %v", model.ErrInvalidInput, err))
	}

	if err := Validator.Struct(dst); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return NewValidationErrorResponse(validationErrs)
		}
		return model.NewAppError("INVALID_INPUT", "入力内容が正しくありません。", "", fmt.Errorf("%w: %v", model.ErrInvalidInput, err))
	}
	return nil
}

// URLParamUUID はパスパラメータをUUIDとして取り出します
func URLParamUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, model.NewAppError("INVALID_INPUT", "IDの形式が正しくありません。", name, fmt.Errorf("%w: %s=%q", model.ErrInvalidInput, name, raw))
	}
	return id, nil
}
