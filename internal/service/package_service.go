//go:generate mockery --name PackageService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"errors"
	"fmt"

	"go_scorm_attempt_keep/internal/middleware"
	"go_scorm_attempt_keep/internal/model"
	"go_scorm_attempt_keep/internal/packagestore"
	"go_scorm_attempt_keep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PackageService はテスト画面 (SCORMコンテンツ) のファイルを返します
type PackageService interface {
	OpenFile(ctx context.Context, taskDefinitionID uuid.UUID, relPath string) (*packagestore.Entry, error)
}

type packageService struct {
	db       *gorm.DB
	taskRepo repository.TaskRepository
	store    *packagestore.Store
}

func NewPackageService(db *gorm.DB, taskRepo repository.TaskRepository, store *packagestore.Store) PackageService {
	return &packageService{db: db, taskRepo: taskRepo, store: store}
}

func (s *packageService) OpenFile(ctx context.Context, taskDefinitionID uuid.UUID, relPath string) (*packagestore.Entry, error) {
	logger := middleware.GetLogger(ctx).With("task_definition_id", taskDefinitionID, "path", relPath)

	def, err := s.taskRepo.FindDefinitionByID(ctx, s.db, taskDefinitionID)
	if err != nil {
		return nil, packageAppError(err)
	}
	if !def.ScormEnabled {
		return nil, packageAppError(model.ErrScormDisabled)
	}
	if !def.HasScormPackage() {
		logger.Info("Task definition has no SCORM package")
		return nil, packageAppError(fmt.Errorf("%w: no package for task definition", model.ErrNotFound))
	}

	entry, err := s.store.Open(*def.ScormPackagePath, relPath)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) && !errors.Is(err, model.ErrInvalidInput) {
			logger.Error("Failed to open SCORM package", "error", err)
		}
		return nil, packageAppError(err)
	}
	return entry, nil
}

func packageAppError(err error) error {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return model.NewAppError("NOT_FOUND", "ファイルが見つかりません。", "", err)
	case errors.Is(err, model.ErrInvalidInput):
		return model.NewAppError("INVALID_INPUT", "ファイルのパスが正しくありません。", "", err)
	case errors.Is(err, model.ErrScormDisabled):
		return model.NewAppError("SCORM_DISABLED", "このタスクではテストが有効になっていません。", "", err)
	default:
		return model.NewAppError("INTERNAL_SERVER_ERROR", "ファイルの読み込みに失敗しました。", "", err)
	}
}
