// internal/model/task_comment.go
package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	CommentKindTestAttemptTerminated = "test_attempt_terminated"
)

// TaskComment はタスクに記録されるコメント (テスト終了通知の記録先)
type TaskComment struct {
	CommentID uuid.UUID `gorm:"type:uuid;primaryKey" json:"comment_id"`
	TaskID    uuid.UUID `gorm:"type:uuid;not null;index" json:"task_id"`
	Kind      string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_comment_attempt_kind,priority:2" json:"kind"`
	// 同じ受験に対して同じ種類の通知は一度だけ
	TestAttemptID *uuid.UUID `gorm:"type:uuid;uniqueIndex:uq_comment_attempt_kind,priority:1" json:"test_attempt_id,omitempty"`
	Comment       string     `gorm:"not null" json:"comment"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (TaskComment) TableName() string {
	return "task_comments"
}
