// internal/middleware/dev_auth.go
package middleware

import (
	"net/http"

	"go_scorm_attempt_keep/internal/model"
	"go_scorm_attempt_keep/internal/webutil"

	"github.com/google/uuid"
)

// DevAuthMiddleware は開発時用ミドルウェアです。
// X-User-ID / X-Role ヘッダーからリクエスト元を組み立ててコンテキストに設定します。
// トークン検証は行いません。X-Role が無ければ student 扱い。
func DevAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := GetLogger(r.Context())

		userIDStr := r.Header.Get("X-User-ID")
		if userIDStr == "" {
			logger.Warn("[DEV AUTH] Failed: X-User-ID header missing")
			webutil.HandleError(w, logger, model.NewAppError("UNAUTHORIZED", "[DEV] X-User-ID ヘッダーが必要です。", "", model.ErrForbidden))
			return
		}

		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			logger.Warn("[DEV AUTH] Failed: Invalid X-User-ID format", "x_user_id", userIDStr)
			webutil.HandleError(w, logger, model.NewAppError("UNAUTHORIZED", "[DEV] X-User-ID の形式が正しくありません。", "", model.ErrForbidden))
			return
		}

		role := model.Role(r.Header.Get("X-Role"))
		if role == "" {
			role = model.RoleStudent
		}
		if _, known := model.TestAttemptPermissions[role]; !known {
			logger.Warn("[DEV AUTH] Failed: Unknown X-Role", "x_role", role)
			webutil.HandleError(w, logger, model.NewAppError("UNAUTHORIZED", "[DEV] X-Role が不明です。", "", model.ErrForbidden))
			return
		}

		logger.Debug("[DEV AUTH] Principal set to context (no validation)", "user_id", userID, "role", role)

		ctx := model.WithPrincipal(r.Context(), model.Principal{UserID: userID, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
