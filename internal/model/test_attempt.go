// internal/model/test_attempt.go
package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CMIデータモデルのうちサーバー側で参照・更新するキー
const (
	CmiCompletionStatus = "cmi.completion_status"
	CmiSuccessStatus    = "cmi.success_status"
	CmiScoreScaled      = "cmi.score.scaled"
	CmiEntry            = "cmi.entry"
	CmiMode             = "cmi.mode"
	CmiLearnerName      = "cmi.learner_name"
	CmiLearnerID        = "cmi.learner_id"
	CmiObjectivesCount  = "cmi.objectives._count"
	CmiInteractionCount = "cmi.interactions._count"
)

const (
	CmiStatusNotAttempted = "not attempted"
	CmiStatusIncomplete   = "incomplete"
	CmiStatusCompleted    = "completed"
	CmiStatusPassed       = "passed"

	CmiEntryAbInitio = "ab-initio"
	CmiEntryResume   = "resume"

	CmiModeNormal = "normal"
	CmiModeReview = "review"
)

const DefaultTestAttemptName = "Default Test"

// SessionState は受験セッションのライフサイクル状態
type SessionState string

const (
	StateAbInitio   SessionState = "ab_initio"
	StateInProgress SessionState = "in_progress"
	StateCompleted  SessionState = "completed"
	StateReview     SessionState = "review"
	StateTerminated SessionState = "terminated"
)

// TestAttempt はタスクに対する1回分のテスト受験を表します
type TestAttempt struct {
	TestAttemptID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TaskID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_task_attempt_number,priority:1;<-:create" json:"task_id"`
	AttemptNumber int       `gorm:"not null;uniqueIndex:uq_task_attempt_number,priority:2;<-:create" json:"attempt_number"`
	Name          *string   `json:"name,omitempty"`
	AttemptedTime time.Time `gorm:"not null;<-:create" json:"attempted_time"`
	Terminated    bool      `gorm:"not null;default:false" json:"terminated"`

	// CMIデータから同期される派生フィールド (直接更新しない)
	CompletionStatus bool     `gorm:"not null;default:false" json:"completion_status"`
	SuccessStatus    bool     `gorm:"not null;default:false" json:"success_status"`
	ScoreScaled      *float64 `json:"score_scaled"`

	CmiDatamodel datatypes.JSON `gorm:"not null" json:"cmi_datamodel"`

	LockVersion int       `gorm:"not null;default:0" json:"-"` // 楽観ロック用
	UpdatedAt   time.Time `json:"updated_at"`
}

func (TestAttempt) TableName() string {
	return "test_attempts"
}

// Clone は更新処理用のコピーを返します (CMIデータとスコアも複製)
func (a *TestAttempt) Clone() *TestAttempt {
	c := *a
	if a.CmiDatamodel != nil {
		c.CmiDatamodel = append(datatypes.JSON(nil), a.CmiDatamodel...)
	}
	if a.ScoreScaled != nil {
		v := *a.ScoreScaled
		c.ScoreScaled = &v
	}
	if a.Name != nil {
		n := *a.Name
		c.Name = &n
	}
	return &c
}

// cmiString は保存済みCMIデータから文字列値を取り出します
func (a *TestAttempt) cmiString(key string) string {
	var doc map[string]any
	if err := json.Unmarshal(a.CmiDatamodel, &doc); err != nil {
		return ""
	}
	s, _ := doc[key].(string)
	return s
}

// State は保存済みの値からライフサイクル状態を導出します
func (a *TestAttempt) State() SessionState {
	switch {
	case a.Terminated:
		return StateTerminated
	case a.CompletionStatus && a.cmiString(CmiMode) == CmiModeReview:
		return StateReview
	case a.CompletionStatus:
		return StateCompleted
	case a.cmiString(CmiEntry) == CmiEntryResume:
		return StateInProgress
	default:
		return StateAbInitio
	}
}

// UpdateTestAttemptRequest は受験データ更新リクエストのDTO
type UpdateTestAttemptRequest struct {
	// JSONオブジェクト、またはJSONオブジェクトを文字列化したもの
	CmiDatamodel json.RawMessage `json:"cmi_datamodel" validate:"required"`
	Terminated   bool            `json:"terminated"`
}

// TestAttemptResponse は受験情報のレスポンスDTO
type TestAttemptResponse struct {
	ID               uuid.UUID       `json:"id"`
	TaskID           uuid.UUID       `json:"task_id"`
	Name             string          `json:"name"`
	AttemptNumber    int             `json:"attempt_number"`
	AttemptedTime    time.Time       `json:"attempted_time"`
	Terminated       bool            `json:"terminated"`
	CompletionStatus bool            `json:"completion_status"`
	SuccessStatus    bool            `json:"success_status"`
	ScoreScaled      *float64        `json:"score_scaled"`
	State            SessionState    `json:"state"`
	CmiDatamodel     json.RawMessage `json:"cmi_datamodel"`
}

func NewTestAttemptResponse(a *TestAttempt) *TestAttemptResponse {
	name := DefaultTestAttemptName
	if a.Name != nil {
		name = *a.Name
	}
	return &TestAttemptResponse{
		ID:               a.TestAttemptID,
		TaskID:           a.TaskID,
		Name:             name,
		AttemptNumber:    a.AttemptNumber,
		AttemptedTime:    a.AttemptedTime,
		Terminated:       a.Terminated,
		CompletionStatus: a.CompletionStatus,
		SuccessStatus:    a.SuccessStatus,
		ScoreScaled:      a.ScoreScaled,
		State:            a.State(),
		CmiDatamodel:     json.RawMessage(a.CmiDatamodel),
	}
}
