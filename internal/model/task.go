// internal/model/task.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// Learner はタスクを受講する学習者 (CMIの learner_name / learner_id の元データ)
type Learner struct {
	LearnerID uuid.UUID `gorm:"type:uuid;primaryKey" json:"learner_id"`
	Name      string    `gorm:"not null" json:"name"`
	StudentID string    `gorm:"not null;index" json:"student_id"` // 学籍番号などの表示用ID
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Learner) TableName() string {
	return "learners"
}

// TaskDefinition はSCORMテストの設定を持つ課題定義です
type TaskDefinition struct {
	TaskDefinitionID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"task_definition_id"`
	Name                  string    `gorm:"not null" json:"name"`
	ScormEnabled          bool      `gorm:"not null;default:false" json:"scorm_enabled"`
	ScormAllowReview      bool      `gorm:"not null;default:false" json:"scorm_allow_review"`
	ScormTimeDelayEnabled bool      `gorm:"not null;default:false" json:"scorm_time_delay_enabled"`
	ScormAttemptLimit     *int      `json:"scorm_attempt_limit"` // NULL または 0 は無制限
	ScormPackagePath      *string   `json:"-"`                   // scorm.package_dir からの相対パス (zip)
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (TaskDefinition) TableName() string {
	return "task_definitions"
}

// AttemptLimit は設定された受験回数上限を返します (0 = 無制限)
func (d *TaskDefinition) AttemptLimit() int {
	if d == nil || d.ScormAttemptLimit == nil || *d.ScormAttemptLimit < 0 {
		return 0
	}
	return *d.ScormAttemptLimit
}

// HasScormPackage はテスト用のコンテンツパッケージが登録済みかを返します
func (d *TaskDefinition) HasScormPackage() bool {
	return d != nil && d.ScormPackagePath != nil && *d.ScormPackagePath != ""
}

// Task は学習者ごとの課題です
type Task struct {
	TaskID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"task_id"`
	TaskDefinitionID uuid.UUID `gorm:"type:uuid;not null;index" json:"task_definition_id"`
	LearnerID        uuid.UUID `gorm:"type:uuid;not null;index" json:"learner_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// 関連 (Preload用)
	TaskDefinition *TaskDefinition `gorm:"foreignKey:TaskDefinitionID;references:TaskDefinitionID" json:"-"`
	Learner        *Learner        `gorm:"foreignKey:LearnerID;references:LearnerID" json:"-"`
}

func (Task) TableName() string {
	return "tasks"
}
