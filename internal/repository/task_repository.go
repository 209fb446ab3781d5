//go:generate mockery --name TaskRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"go_scorm_attempt_keep/internal/middleware"
	"go_scorm_attempt_keep/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskRepository はタスクと課題定義の読み取りを扱います
type TaskRepository interface {
	// FindByID は課題定義と学習者をPreloadしたタスクを返します
	FindByID(ctx context.Context, db *gorm.DB, taskID uuid.UUID) (*model.Task, error)
	// LockByID はトランザクション内でタスク行を排他ロックします (受験番号採番の直列化用)
	LockByID(ctx context.Context, tx *gorm.DB, taskID uuid.UUID) error
	FindDefinitionByID(ctx context.Context, db *gorm.DB, taskDefinitionID uuid.UUID) (*model.TaskDefinition, error)
}

type gormTaskRepository struct{}

func NewGormTaskRepository() TaskRepository {
	return &gormTaskRepository{}
}

func (r *gormTaskRepository) FindByID(ctx context.Context, db *gorm.DB, taskID uuid.UUID) (*model.Task, error) {
	logger := middleware.GetLogger(ctx)
	var task model.Task

	result := db.WithContext(ctx).
		Preload("TaskDefinition").
		Preload("Learner").
		Where("task_id = ?", taskID).
		First(&task)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			logger.Debug("Task not found", "task_id", taskID)
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding task by ID in DB", "error", result.Error, "task_id", taskID)
		return nil, fmt.Errorf("gormTaskRepository.FindByID: %w", result.Error)
	}
	return &task, nil
}

func (r *gormTaskRepository) LockByID(ctx context.Context, tx *gorm.DB, taskID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	var locked model.Task

	// SQLite では FOR UPDATE は出力されない (接続が1本なので不要)
	result := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("task_id").
		Where("task_id = ?", taskID).
		First(&locked)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return model.ErrNotFound
		}
		logger.Error("Error locking task row", "error", result.Error, "task_id", taskID)
		return fmt.Errorf("gormTaskRepository.LockByID: %w", result.Error)
	}
	return nil
}

func (r *gormTaskRepository) FindDefinitionByID(ctx context.Context, db *gorm.DB, taskDefinitionID uuid.UUID) (*model.TaskDefinition, error) {
	logger := middleware.GetLogger(ctx)
	var def model.TaskDefinition

	result := db.WithContext(ctx).Where("task_definition_id = ?", taskDefinitionID).First(&def)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding task definition by ID in DB", "error", result.Error, "task_definition_id", taskDefinitionID)
		return nil, fmt.Errorf("gormTaskRepository.FindDefinitionByID: %w", result.Error)
	}
	return &def, nil
}
