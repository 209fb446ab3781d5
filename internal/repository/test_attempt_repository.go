//go:generate mockery --name TestAttemptRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go_scorm_attempt_keep/internal/middleware"
	"go_scorm_attempt_keep/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TestAttemptRepository interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *model.TestAttempt) error
	FindByID(ctx context.Context, db *gorm.DB, attemptID uuid.UUID) (*model.TestAttempt, error)
	// FindByIDForUpdate はトランザクション内で受験行を排他ロックして取得します
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) (*model.TestAttempt, error)
	// ListByTask は受験番号の降順で返します
	ListByTask(ctx context.Context, db *gorm.DB, taskID uuid.UUID) ([]*model.TestAttempt, error)
	// FindLatest は受験番号が最大の受験を返します。completedOnly なら完了済みの中から。
	FindLatest(ctx context.Context, db *gorm.DB, taskID uuid.UUID, completedOnly bool) (*model.TestAttempt, error)
	// Update はCMIデータと派生フィールド、終了フラグを1つのUPDATE文で書き込みます。
	// lock_version が読み取り時から変わっていれば model.ErrConflict。
	Update(ctx context.Context, tx *gorm.DB, attempt *model.TestAttempt) error
}

type gormTestAttemptRepository struct{}

func NewGormTestAttemptRepository() TestAttemptRepository {
	return &gormTestAttemptRepository{}
}

func (r *gormTestAttemptRepository) Create(ctx context.Context, tx *gorm.DB, attempt *model.TestAttempt) error {
	logger := middleware.GetLogger(ctx)

	result := tx.WithContext(ctx).Create(attempt)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			logger.Warn("Duplicate attempt number on create test attempt",
				"error", result.Error,
				"task_id", attempt.TaskID,
				"attempt_number", attempt.AttemptNumber,
			)
			return model.ErrConflict
		}
		logger.Error("Error creating test attempt in DB",
			"error", result.Error,
			"task_id", attempt.TaskID,
		)
		return fmt.Errorf("gormTestAttemptRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormTestAttemptRepository) FindByID(ctx context.Context, db *gorm.DB, attemptID uuid.UUID) (*model.TestAttempt, error) {
	return r.findByID(ctx, db.WithContext(ctx), attemptID, "FindByID")
}

func (r *gormTestAttemptRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) (*model.TestAttempt, error) {
	return r.findByID(ctx, tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), attemptID, "FindByIDForUpdate")
}

func (r *gormTestAttemptRepository) findByID(ctx context.Context, q *gorm.DB, attemptID uuid.UUID, op string) (*model.TestAttempt, error) {
	logger := middleware.GetLogger(ctx)
	var attempt model.TestAttempt

	result := q.Where("test_attempt_id = ?", attemptID).First(&attempt)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding test attempt by ID in DB", "error", result.Error, "test_attempt_id", attemptID)
		return nil, fmt.Errorf("gormTestAttemptRepository.%s: %w", op, result.Error)
	}
	return &attempt, nil
}

func (r *gormTestAttemptRepository) ListByTask(ctx context.Context, db *gorm.DB, taskID uuid.UUID) ([]*model.TestAttempt, error) {
	logger := middleware.GetLogger(ctx)
	var attempts []*model.TestAttempt

	result := db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("attempt_number DESC").
		Find(&attempts)
	if result.Error != nil {
		logger.Error("Error listing test attempts by task in DB", "error", result.Error, "task_id", taskID)
		return nil, fmt.Errorf("gormTestAttemptRepository.ListByTask: %w", result.Error)
	}
	return attempts, nil
}

func (r *gormTestAttemptRepository) FindLatest(ctx context.Context, db *gorm.DB, taskID uuid.UUID, completedOnly bool) (*model.TestAttempt, error) {
	logger := middleware.GetLogger(ctx)
	var attempt model.TestAttempt

	q := db.WithContext(ctx).Where("task_id = ?", taskID)
	if completedOnly {
		q = q.Where("completion_status = ?", true)
	}
	result := q.Order("attempt_number DESC").First(&attempt)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding latest test attempt in DB",
			"error", result.Error,
			"task_id", taskID,
			"completed_only", completedOnly,
		)
		return nil, fmt.Errorf("gormTestAttemptRepository.FindLatest: %w", result.Error)
	}
	return &attempt, nil
}

func (r *gormTestAttemptRepository) Update(ctx context.Context, tx *gorm.DB, attempt *model.TestAttempt) error {
	logger := middleware.GetLogger(ctx)
	now := time.Now()

	// 受験番号・受験日時は作成後に変えない
	result := tx.WithContext(ctx).
		Model(&model.TestAttempt{}).
		Where("test_attempt_id = ? AND lock_version = ?", attempt.TestAttemptID, attempt.LockVersion).
		Updates(map[string]interface{}{
			"cmi_datamodel":     attempt.CmiDatamodel,
			"completion_status": attempt.CompletionStatus,
			"success_status":    attempt.SuccessStatus,
			"score_scaled":      attempt.ScoreScaled,
			"terminated":        attempt.Terminated,
			"lock_version":      gorm.Expr("lock_version + 1"),
			"updated_at":        now,
		})
	if result.Error != nil {
		logger.Error("Error updating test attempt in DB", "error", result.Error, "test_attempt_id", attempt.TestAttemptID)
		return fmt.Errorf("gormTestAttemptRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		logger.Warn("Test attempt was modified concurrently (lock version mismatch)",
			"test_attempt_id", attempt.TestAttemptID,
			"lock_version", attempt.LockVersion,
		)
		return model.ErrConflict
	}

	attempt.LockVersion++
	attempt.UpdatedAt = now
	return nil
}
