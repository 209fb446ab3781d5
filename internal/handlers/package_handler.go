// internal/handlers/package_handler.go
package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"go_scorm_attempt_keep/internal/service"
	"go_scorm_attempt_keep/internal/webutil"

	"github.com/go-chi/chi/v5"
)

// PackageHandler はテスト画面のファイルをSCORMパッケージから返します
type PackageHandler struct {
	service service.PackageService
}

func NewPackageHandler(s service.PackageService) *PackageHandler {
	return &PackageHandler{service: s}
}

// ServeFile は GET /task_definitions/{task_def_id}/scorm/* を処理します
func (h *PackageHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "ServeScormFile")

	taskDefID, err := webutil.URLParamUUID(r, "task_def_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	relPath := chi.URLParam(r, "*")

	entry, err := h.service.OpenFile(r.Context(), taskDefID, relPath)
	if err != nil {
		logger.Info("SCORM file not served", slog.String("path", relPath), slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	defer entry.Close()

	// テスト中にコンテンツが差し替えられても古いファイルを使わない
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.Header().Set("Content-Type", entry.MediaType)
	if entry.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(entry.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, entry); err != nil {
		logger.Warn("Failed to stream SCORM file", slog.String("path", relPath), slog.Any("error", err))
	}
}
