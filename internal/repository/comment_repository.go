//go:generate mockery --name CommentRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"fmt"

	"go_scorm_attempt_keep/internal/middleware"
	"go_scorm_attempt_keep/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommentRepository はタスクコメント (終了通知の記録) を扱います
type CommentRepository interface {
	// Create は同じ受験・種類のコメントが既にあれば model.ErrConflict を返します
	Create(ctx context.Context, tx *gorm.DB, comment *model.TaskComment) error
	ListByTask(ctx context.Context, db *gorm.DB, taskID uuid.UUID) ([]*model.TaskComment, error)
}

type gormCommentRepository struct{}

func NewGormCommentRepository() CommentRepository {
	return &gormCommentRepository{}
}

func (r *gormCommentRepository) Create(ctx context.Context, tx *gorm.DB, comment *model.TaskComment) error {
	logger := middleware.GetLogger(ctx)

	result := tx.WithContext(ctx).Create(comment)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			logger.Warn("Duplicate task comment", "task_id", comment.TaskID, "kind", comment.Kind)
			return model.ErrConflict
		}
		logger.Error("Error creating task comment in DB", "error", result.Error, "task_id", comment.TaskID)
		return fmt.Errorf("gormCommentRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormCommentRepository) ListByTask(ctx context.Context, db *gorm.DB, taskID uuid.UUID) ([]*model.TaskComment, error) {
	logger := middleware.GetLogger(ctx)
	var comments []*model.TaskComment

	result := db.WithContext(ctx).Where("task_id = ?", taskID).Order("created_at ASC").Find(&comments)
	if result.Error != nil {
		logger.Error("Error listing task comments in DB", "error", result.Error, "task_id", taskID)
		return nil, fmt.Errorf("gormCommentRepository.ListByTask: %w", result.Error)
	}
	return comments, nil
}
