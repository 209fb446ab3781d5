package webutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go_scorm_attempt_keep/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"NotFound", model.ErrNotFound, http.StatusNotFound},
		{"InvalidInput", model.ErrInvalidInput, http.StatusBadRequest},
		{"MalformedDocument (ラップ)", fmt.Errorf("%w: bad", model.ErrMalformedDocument), http.StatusBadRequest},
		{"SessionClosed", model.ErrSessionClosed, http.StatusConflict},
		{"InvalidState", model.ErrInvalidState, http.StatusConflict},
		{"Conflict", model.ErrConflict, http.StatusConflict},
		{"AttemptLimitExceeded", model.NewAppError("ATTEMPT_LIMIT_EXCEEDED", "", "", model.ErrAttemptLimitExceeded), http.StatusForbidden},
		{"ScormDisabled", model.ErrScormDisabled, http.StatusForbidden},
		{"ReviewNotAllowed", model.ErrReviewNotAllowed, http.StatusForbidden},
		{"Forbidden", model.ErrForbidden, http.StatusForbidden},
		{"NotSupported", model.ErrNotSupported, http.StatusMethodNotAllowed},
		{"TRANSACTION_CONFLICT は500", model.NewAppError("TRANSACTION_CONFLICT", "", "", model.ErrInternalServer), http.StatusInternalServerError},
		{"未知のエラー", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestHandleError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("AppErrorの詳細を返す", func(t *testing.T) {
		rr := httptest.NewRecorder()
		HandleError(rr, logger, model.NewAppError("ATTEMPT_LIMIT_EXCEEDED", "受験回数の上限です。", "", model.ErrAttemptLimitExceeded))

		assert.Equal(t, http.StatusForbidden, rr.Code)
		var body model.APIErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "ATTEMPT_LIMIT_EXCEEDED", body.Error.Code)
		assert.Equal(t, "受験回数の上限です。", body.Error.Message)
	})

	t.Run("ラップされていないドメインエラー", func(t *testing.T) {
		rr := httptest.NewRecorder()
		HandleError(rr, logger, model.ErrSessionClosed)

		assert.Equal(t, http.StatusConflict, rr.Code)
		var body model.APIErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "TEST_ATTEMPT_TERMINATED", body.Error.Code)
	})

	t.Run("予期せぬエラーは詳細を隠す", func(t *testing.T) {
		rr := httptest.NewRecorder()
		HandleError(rr, logger, errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "connection refused")
		assert.Contains(t, rr.Body.String(), "INTERNAL_SERVER_ERROR")
	})
}

func TestDecodeJSONBody(t *testing.T) {
	t.Run("必須項目が無い", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"terminated": true}`))
		err := DecodeJSONBody(httptest.NewRecorder(), req, &model.UpdateTestAttemptRequest{})

		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrInvalidInput)
		var appErr *model.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
		assert.Equal(t, "cmi_datamodel", appErr.Field)
		assert.Contains(t, appErr.Message, "CMIデータ")
	})

	t.Run("未知のフィールドは拒否", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"cmi_datamodel": {}, "completion_status": true}`))
		err := DecodeJSONBody(httptest.NewRecorder(), req, &model.UpdateTestAttemptRequest{})
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})

	t.Run("正常", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"cmi_datamodel": {"cmi.entry": "resume"}, "terminated": true}`))
		var dst model.UpdateTestAttemptRequest
		require.NoError(t, DecodeJSONBody(httptest.NewRecorder(), req, &dst))
		assert.True(t, dst.Terminated)
		assert.JSONEq(t, `{"cmi.entry": "resume"}`, string(dst.CmiDatamodel))
	})
}
