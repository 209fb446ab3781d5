// internal/model/permission.go
package model

import (
	"context"

	"github.com/google/uuid"
)

// Role はリクエスト元ユーザーのロール (JWTの role クレーム)
type Role string

const (
	RoleStudent  Role = "student"
	RoleTutor    Role = "tutor"
	RoleConvenor Role = "convenor"
)

// Permission はテスト受験リソースに対する操作
type Permission string

const (
	PermCreate     Permission = "create"
	PermViewOwn    Permission = "view_own"
	PermUpdateOwn  Permission = "update_own"
	PermReviewOwn  Permission = "review_own"
	PermViewOthers Permission = "view_others"
)

// TestAttemptPermissions はロールごとの許可操作表です。
// 受験記録は監査のため削除しないので、削除権限はどのロールにもない。
var TestAttemptPermissions = map[Role][]Permission{
	RoleStudent:  {PermCreate, PermViewOwn, PermUpdateOwn, PermReviewOwn},
	RoleTutor:    {PermViewOwn, PermViewOthers},
	RoleConvenor: {PermViewOwn, PermViewOthers},
}

// CoversOthers は他の学習者のタスクにも及ぶ操作かを返します
func (p Permission) CoversOthers() bool {
	return p == PermViewOthers
}

// HasPermission はロールが操作を許可されているかを返します
func HasPermission(role Role, perm Permission) bool {
	for _, p := range TestAttemptPermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

type ContextKey string

const (
	PrincipalKey   ContextKey = "principal"
	AccessScopeKey ContextKey = "access_scope"
)

// AccessScope は認可ミドルウェアが決めた、そのリクエストで扱えるタスクの範囲
type AccessScope int

const (
	ScopeOwnTasks AccessScope = iota // 自分のタスクのみ
	ScopeAnyTask
)

// Principal は認証済みのリクエスト元 (JWTの sub と role)
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

// Can は操作が許可されているかを返します
func (p Principal) Can(perm Permission) bool {
	return HasPermission(p.Role, perm)
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// PrincipalFromContext は認証ミドルウェアがセットしたリクエスト元を返します。
// 認証無効時はセットされない。
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(Principal)
	return p, ok
}

func WithAccessScope(ctx context.Context, scope AccessScope) context.Context {
	return context.WithValue(ctx, AccessScopeKey, scope)
}

// AccessScopeFromContext はセットされていなければ ScopeOwnTasks を返します
func AccessScopeFromContext(ctx context.Context) AccessScope {
	if scope, ok := ctx.Value(AccessScopeKey).(AccessScope); ok {
		return scope
	}
	return ScopeOwnTasks
}
