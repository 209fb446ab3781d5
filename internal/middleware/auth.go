package middleware

import (
	"errors"
	"net/http"
	"strings"

	"go_scorm_attempt_keep/internal/config"
	"go_scorm_attempt_keep/internal/model"
	"go_scorm_attempt_keep/internal/webutil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTAuthMiddleware は Authorization ヘッダーの Bearer トークンを検証するミドルウェア。
// sub をユーザーID、role クレームをロールとしてコンテキストにセットします。
func JWTAuthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := GetLogger(r.Context())

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("JWT auth failed: Authorization header missing")
				webutil.HandleError(w, logger, model.NewAppError("UNAUTHORIZED", "Authorizationヘッダーが必要です。", "", model.ErrForbidden))
				return
			}

			// "Bearer {token}" の形式を検証
			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
				logger.Warn("JWT auth failed: Invalid Authorization header format")
				webutil.HandleError(w, logger, model.NewAppError("UNAUTHORIZED", "Authorizationヘッダーの形式が正しくありません。", "", model.ErrForbidden))
				return
			}

			principal, err := parsePrincipal(headerParts[1], []byte(cfg.JWT.SecretKey))
			if err != nil {
				logger.Warn("JWT auth failed: Invalid token", "error", err)
				webutil.HandleError(w, logger, model.NewAppError("INVALID_TOKEN", "トークンが無効です。", "", model.ErrForbidden))
				return
			}

			ctx := model.WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// parsePrincipal は署名・有効期限を検証し、sub と role を取り出します
func parsePrincipal(tokenString string, secret []byte) (model.Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return model.Principal{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return model.Principal{}, errors.New("unknown claims type")
	}

	subject, err := claims.GetSubject()
	if err != nil {
		return model.Principal{}, err
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		return model.Principal{}, errors.New("invalid subject format")
	}

	role, _ := claims["role"].(string)
	if _, known := model.TestAttemptPermissions[model.Role(role)]; !known {
		return model.Principal{}, errors.New("unknown role claim")
	}

	return model.Principal{UserID: userID, Role: model.Role(role)}, nil
}

// RequirePermission はロールが操作を許可されていなければ 403 を返すミドルウェア。
// 許可された操作から扱えるタスクの範囲を決め、コンテキストにセットする。
// 認証が無効 (コンテキストにリクエスト元が無い) の場合は素通しします。
func RequirePermission(perms ...model.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := model.PrincipalFromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			granted := false
			scope := model.ScopeOwnTasks
			for _, perm := range perms {
				if !principal.Can(perm) {
					continue
				}
				granted = true
				if perm.CoversOthers() {
					scope = model.ScopeAnyTask
				}
			}
			if granted {
				next.ServeHTTP(w, r.WithContext(model.WithAccessScope(r.Context(), scope)))
				return
			}

			logger := GetLogger(r.Context())
			logger.Warn("Permission denied", "user_id", principal.UserID, "role", principal.Role, "required", perms)
			webutil.HandleError(w, logger, model.NewAppError("FORBIDDEN", "この操作を行う権限がありません。", "", model.ErrForbidden))
		})
	}
}
