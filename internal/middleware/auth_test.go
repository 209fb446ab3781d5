package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go_scorm_attempt_keep/internal/config"
	"go_scorm_attempt_keep/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

// capturePrincipal は後続ハンドラに渡ったリクエスト元を記録します
func capturePrincipal(got *model.Principal, called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		*got, _ = model.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestJWTAuthMiddleware(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{SecretKey: testSecret}}
	userID := uuid.New()
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantRole   model.Role
	}{
		{
			name:       "正常: student",
			header:     "Bearer " + signToken(t, jwt.MapClaims{"sub": userID.String(), "role": "student", "exp": exp}, testSecret),
			wantStatus: http.StatusNoContent,
			wantRole:   model.RoleStudent,
		},
		{
			name:       "正常: tutor (bearer 小文字)",
			header:     "bearer " + signToken(t, jwt.MapClaims{"sub": userID.String(), "role": "tutor", "exp": exp}, testSecret),
			wantStatus: http.StatusNoContent,
			wantRole:   model.RoleTutor,
		},
		{
			name:       "ヘッダーなし",
			header:     "",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "形式不正",
			header:     "Token abc",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "署名キー違い",
			header:     "Bearer " + signToken(t, jwt.MapClaims{"sub": userID.String(), "role": "student", "exp": exp}, "other"),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "期限切れ",
			header:     "Bearer " + signToken(t, jwt.MapClaims{"sub": userID.String(), "role": "student", "exp": time.Now().Add(-time.Minute).Unix()}, testSecret),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "exp なし",
			header:     "Bearer " + signToken(t, jwt.MapClaims{"sub": userID.String(), "role": "student"}, testSecret),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "sub がUUIDでない",
			header:     "Bearer " + signToken(t, jwt.MapClaims{"sub": "alice", "role": "student", "exp": exp}, testSecret),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "未知のロール",
			header:     "Bearer " + signToken(t, jwt.MapClaims{"sub": userID.String(), "role": "admin", "exp": exp}, testSecret),
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got model.Principal
			called := false
			h := JWTAuthMiddleware(cfg)(capturePrincipal(&got, &called))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusNoContent {
				assert.True(t, called)
				assert.Equal(t, userID, got.UserID)
				assert.Equal(t, tt.wantRole, got.Role)
			} else {
				assert.False(t, called)
			}
		})
	}
}

func TestRequirePermission(t *testing.T) {
	tests := []struct {
		name       string
		principal  *model.Principal
		perms      []model.Permission
		wantStatus int
	}{
		{"student は作成できる", &model.Principal{UserID: uuid.New(), Role: model.RoleStudent}, []model.Permission{model.PermCreate}, http.StatusNoContent},
		{"tutor は作成できない", &model.Principal{UserID: uuid.New(), Role: model.RoleTutor}, []model.Permission{model.PermCreate}, http.StatusForbidden},
		{"tutor は他人の受験を閲覧できる", &model.Principal{UserID: uuid.New(), Role: model.RoleTutor}, []model.Permission{model.PermViewOwn, model.PermViewOthers}, http.StatusNoContent},
		{"convenor はレビューできない", &model.Principal{UserID: uuid.New(), Role: model.RoleConvenor}, []model.Permission{model.PermReviewOwn}, http.StatusForbidden},
		{"認証無効時は素通し", nil, []model.Permission{model.PermCreate}, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got model.Principal
			called := false
			h := RequirePermission(tt.perms...)(capturePrincipal(&got, &called))

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.principal != nil {
				req = req.WithContext(model.WithPrincipal(req.Context(), *tt.principal))
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantStatus == http.StatusNoContent, called)
		})
	}
}

func TestRequirePermission_範囲をセット(t *testing.T) {
	tests := []struct {
		name      string
		role      model.Role
		perms     []model.Permission
		wantScope model.AccessScope
	}{
		{"student の閲覧は自分のタスクのみ", model.RoleStudent, []model.Permission{model.PermViewOwn, model.PermViewOthers}, model.ScopeOwnTasks},
		{"tutor の閲覧は他人のタスクも可", model.RoleTutor, []model.Permission{model.PermViewOwn, model.PermViewOthers}, model.ScopeAnyTask},
		{"student の更新は自分のタスクのみ", model.RoleStudent, []model.Permission{model.PermUpdateOwn}, model.ScopeOwnTasks},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got model.AccessScope = -1
			h := RequirePermission(tt.perms...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = model.AccessScopeFromContext(r.Context())
				w.WriteHeader(http.StatusNoContent)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(model.WithPrincipal(req.Context(), model.Principal{UserID: uuid.New(), Role: tt.role}))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusNoContent, rr.Code)
			assert.Equal(t, tt.wantScope, got)
		})
	}
}

func TestDevAuthMiddleware(t *testing.T) {
	userID := uuid.New()

	t.Run("X-Role 省略時は student", func(t *testing.T) {
		var got model.Principal
		called := false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-User-ID", userID.String())
		rr := httptest.NewRecorder()

		DevAuthMiddleware(capturePrincipal(&got, &called)).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, model.Principal{UserID: userID, Role: model.RoleStudent}, got)
	})

	t.Run("X-User-ID が不正", func(t *testing.T) {
		var got model.Principal
		called := false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-User-ID", "not-a-uuid")
		rr := httptest.NewRecorder()

		DevAuthMiddleware(capturePrincipal(&got, &called)).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.False(t, called)
	})
}
