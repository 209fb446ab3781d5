// internal/handlers/test_attempt_handler.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"go_scorm_attempt_keep/internal/middleware"
	"go_scorm_attempt_keep/internal/model"
	"go_scorm_attempt_keep/internal/service"
	"go_scorm_attempt_keep/internal/webutil"

	"github.com/google/uuid"
)

type TestAttemptHandler struct {
	service service.TestAttemptService
}

func NewTestAttemptHandler(s service.TestAttemptService) *TestAttemptHandler {
	return &TestAttemptHandler{service: s}
}

// handlerLogger はリクエストスコープのロガーにハンドラ名を付けて返します
func handlerLogger(r *http.Request, name string) *slog.Logger {
	return middleware.GetLogger(r.Context()).With(slog.String("handler", name))
}

// GetOrCreateSession は未完了の受験を再開するか、新しい受験を作成します
func (h *TestAttemptHandler) GetOrCreateSession(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "GetOrCreateSession")

	taskID, err := webutil.URLParamUUID(r, "task_id")
	if err != nil {
		logger.Warn("Invalid task ID format in URL", slog.String("error", err.Error()))
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("task_id", taskID.String()))

	attempt, err := h.service.GetOrCreateSession(r.Context(), taskID)
	if err != nil {
		logSessionError(logger, err)
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Session ready", slog.String("test_attempt_id", attempt.TestAttemptID.String()), slog.Int("attempt_number", attempt.AttemptNumber))
	webutil.RespondWithJSON(w, http.StatusOK, model.NewTestAttemptResponse(attempt), logger)
}

// ListTestAttempts はタスクの受験一覧 (受験番号の降順) を返します
func (h *TestAttemptHandler) ListTestAttempts(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "ListTestAttempts")

	taskID, err := webutil.URLParamUUID(r, "task_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	attempts, err := h.service.ListTestAttempts(r.Context(), taskID)
	if err != nil {
		logSessionError(logger, err)
		webutil.HandleError(w, logger, err)
		return
	}

	resp := make([]*model.TestAttemptResponse, 0, len(attempts))
	for _, a := range attempts {
		resp = append(resp, model.NewTestAttemptResponse(a))
	}
	logger.Info("Test attempts listed", slog.Int("count", len(resp)))
	webutil.RespondWithJSON(w, http.StatusOK, resp, logger)
}

// GetLatest は最新の受験を返します。?completed=true なら完了済みのうち最新。
func (h *TestAttemptHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "GetLatest")

	taskID, err := webutil.URLParamUUID(r, "task_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	completedOnly := false
	if raw := r.URL.Query().Get("completed"); raw != "" {
		completedOnly, err = strconv.ParseBool(raw)
		if err != nil {
			appErr := model.NewAppError("INVALID_QUERY_PARAM", "completedはtrueまたはfalseで指定してください。", "completed", model.ErrInvalidInput)
			webutil.HandleError(w, logger, appErr)
			return
		}
	}

	attempt, err := h.service.GetLatest(r.Context(), taskID, completedOnly)
	if err != nil {
		logSessionError(logger, err)
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, model.NewTestAttemptResponse(attempt), logger)
}

func (h *TestAttemptHandler) GetTestAttempt(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "GetTestAttempt")

	attemptID, ok := attemptIDParam(w, r, logger)
	if !ok {
		return
	}

	attempt, err := h.service.GetTestAttempt(r.Context(), attemptID)
	if err != nil {
		logSessionError(logger, err)
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, model.NewTestAttemptResponse(attempt), logger)
}

// UpdateTestAttempt はクライアントのCMIデータを反映します。terminated=true なら続けて終了します。
func (h *TestAttemptHandler) UpdateTestAttempt(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "UpdateTestAttempt")

	attemptID, ok := attemptIDParam(w, r, logger)
	if !ok {
		return
	}

	var req model.UpdateTestAttemptRequest
	if err := webutil.DecodeJSONBody(w, r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		webutil.HandleError(w, logger, err)
		return
	}

	attempt, err := h.service.UpdateTestAttempt(r.Context(), attemptID, req.CmiDatamodel, req.Terminated)
	if err != nil {
		logSessionError(logger, err)
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Test attempt updated", slog.Bool("terminated", attempt.Terminated))
	webutil.RespondWithJSON(w, http.StatusOK, model.NewTestAttemptResponse(attempt), logger)
}

// RequestReview は完了済みの受験をレビューモードに切り替えます
func (h *TestAttemptHandler) RequestReview(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "RequestReview")

	attemptID, ok := attemptIDParam(w, r, logger)
	if !ok {
		return
	}

	attempt, err := h.service.RequestReview(r.Context(), attemptID)
	if err != nil {
		logSessionError(logger, err)
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, model.NewTestAttemptResponse(attempt), logger)
}

func (h *TestAttemptHandler) TerminateTestAttempt(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "TerminateTestAttempt")

	attemptID, ok := attemptIDParam(w, r, logger)
	if !ok {
		return
	}

	attempt, err := h.service.TerminateTestAttempt(r.Context(), attemptID)
	if err != nil {
		logSessionError(logger, err)
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, model.NewTestAttemptResponse(attempt), logger)
}

// DeleteTestAttempt は常に 405 (受験記録は削除しない)
func (h *TestAttemptHandler) DeleteTestAttempt(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "DeleteTestAttempt")

	attemptID, ok := attemptIDParam(w, r, logger)
	if !ok {
		return
	}
	if err := h.service.DeleteTestAttempt(r.Context(), attemptID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func attemptIDParam(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (uuid.UUID, bool) {
	id, err := webutil.URLParamUUID(r, "test_attempt_id")
	if err != nil {
		logger.Warn("Invalid test attempt ID format in URL", slog.String("error", err.Error()))
		webutil.HandleError(w, logger, err)
		return uuid.Nil, false
	}
	return id, true
}

// logSessionError はクライアント起因のエラーを Info、それ以外を Error で記録します
func logSessionError(logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound),
		errors.Is(err, model.ErrSessionClosed),
		errors.Is(err, model.ErrAttemptLimitExceeded),
		errors.Is(err, model.ErrMalformedDocument),
		errors.Is(err, model.ErrInvalidState),
		errors.Is(err, model.ErrForbidden):
		logger.Info("Test attempt request rejected", slog.Any("error", err))
	default:
		logger.Error("Error in test attempt service", slog.Any("error", err))
	}
}
