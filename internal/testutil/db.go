// Package testutil はリポジトリ・サービス・ハンドラのテストで共有する
// インメモリSQLiteのセットアップとフィクスチャを提供します。
package testutil

import (
	"io"
	"log/slog"
	"testing"

	"go_scorm_attempt_keep/internal/config"
	"go_scorm_attempt_keep/internal/model"
	"go_scorm_attempt_keep/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// DiscardLogger はテスト中のログを捨てるロガー
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewTestDB はテストごとに独立したインメモリSQLiteを開き、マイグレーション済みの *gorm.DB を返します
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// テストごとに別DBにするため名前付きのインメモリDBを使う
	dsn := "sqlite:file:" + uuid.NewString() + "?mode=memory&cache=shared&_busy_timeout=5000"
	db, err := repository.NewDB(config.DatabaseConfig{URL: dsn, AutoMigrate: true}, DiscardLogger())
	require.NoError(t, err, "failed to open test database")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// TaskFixture は課題定義・学習者・タスクの作成オプション
type TaskFixture struct {
	LearnerName      string
	StudentID        string
	ScormDisabled    bool
	AllowReview      bool
	AttemptLimit     *int
	ScormPackagePath string
}

// CreateTask は課題定義・学習者・タスクを作成し、関連をロードしたタスクを返します
func CreateTask(t *testing.T, db *gorm.DB, f TaskFixture) *model.Task {
	t.Helper()

	if f.LearnerName == "" {
		f.LearnerName = "Jane Doe"
	}
	if f.StudentID == "" {
		f.StudentID = "S123"
	}

	learner := &model.Learner{LearnerID: uuid.New(), Name: f.LearnerName, StudentID: f.StudentID}
	require.NoError(t, db.Create(learner).Error)

	def := &model.TaskDefinition{
		TaskDefinitionID:  uuid.New(),
		Name:              "Unit Test",
		ScormEnabled:      !f.ScormDisabled,
		ScormAllowReview:  f.AllowReview,
		ScormAttemptLimit: f.AttemptLimit,
	}
	if f.ScormPackagePath != "" {
		def.ScormPackagePath = &f.ScormPackagePath
	}
	// false の bool は default 値扱いで省略されるので Select で明示する
	require.NoError(t, db.Select("*").Create(def).Error)

	task := &model.Task{TaskID: uuid.New(), TaskDefinitionID: def.TaskDefinitionID, LearnerID: learner.LearnerID}
	require.NoError(t, db.Create(task).Error)

	task.TaskDefinition = def
	task.Learner = learner
	return task
}

// IntPtr は *int を返すヘルパー
func IntPtr(i int) *int { return &i }
