package repository

import (
	"errors"

	"go_scorm_attempt_keep/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL のエラーコード
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// isUniqueViolation は一意制約違反かどうかを判定します。
// TranslateError が効かない経路 (生SQLなど) に備えて pgconn のコードも見る。
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// IsRetryable はトランザクションをやり直せば成功しうるエラーかを判定します
// (一意制約違反・楽観ロック失敗・直列化失敗・デッドロック)。
func IsRetryable(err error) bool {
	if errors.Is(err, model.ErrConflict) || isUniqueViolation(err) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected)
}
