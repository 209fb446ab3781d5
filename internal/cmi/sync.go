package cmi

import (
	"errors"
	"fmt"

	"go_scorm_attempt_keep/internal/model"
)

// SeedInitialDocument は新しい受験の初期CMIデータを作ります。
// 学習者名とIDはこの時点の値で固定され、以後同期しない。
func SeedInitialDocument(task *model.Task) (Document, error) {
	if task == nil || task.Learner == nil {
		return nil, errors.New("cmi.SeedInitialDocument: task learner is not loaded")
	}
	return Document{
		model.CmiCompletionStatus: model.CmiStatusNotAttempted,
		model.CmiEntry:            model.CmiEntryAbInitio,
		model.CmiObjectivesCount:  "0", // 件数はフロントエンドが管理する
		model.CmiInteractionCount: "0",
		model.CmiMode:             model.CmiModeNormal,
		model.CmiLearnerName:      task.Learner.Name,
		model.CmiLearnerID:        task.Learner.StudentID,
	}, nil
}

// ApplyUpdate は送られてきたCMIデータを受験レコードにマージし、
// 派生フィールドを再計算したコピーを返します。元のレコードは変更しない。
func ApplyUpdate(attempt *model.TestAttempt, raw []byte) (*model.TestAttempt, error) {
	if attempt.Terminated {
		return nil, model.ErrSessionClosed
	}
	incoming, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return ApplyDocument(attempt, incoming)
}

// ApplyDocument は解析済みのCMIデータで ApplyUpdate と同じ処理を行います
func ApplyDocument(attempt *model.TestAttempt, incoming Document) (*model.TestAttempt, error) {
	if attempt.Terminated {
		return nil, model.ErrSessionClosed
	}
	stored, err := Decode(attempt.CmiDatamodel)
	if err != nil {
		return nil, err
	}

	merged := stored.Merge(incoming)
	status := merged.String(model.CmiCompletionStatus)
	// incomplete のときだけ entry を resume に強制し、それ以外は送られた値のまま
	if status == model.CmiStatusIncomplete {
		merged[model.CmiEntry] = model.CmiEntryResume
	}
	// レビューモードは完了済みのときだけ。送られた値でも保存済みの値でも normal に戻す
	if status != model.CmiStatusCompleted && merged.String(model.CmiMode) == model.CmiModeReview {
		merged[model.CmiMode] = model.CmiModeNormal
	}

	return withDocument(attempt, merged, true)
}

// ApplyReview はレビューモードに切り替えたコピーを返します。
// 完了済みでなければ ErrInvalidState。何度呼んでも結果は同じ。
func ApplyReview(attempt *model.TestAttempt) (*model.TestAttempt, error) {
	if attempt.Terminated {
		return nil, model.ErrSessionClosed
	}
	if !attempt.CompletionStatus {
		return nil, fmt.Errorf("%w: review requires a completed attempt", model.ErrInvalidState)
	}
	doc, err := Decode(attempt.CmiDatamodel)
	if err != nil {
		return nil, err
	}
	doc[model.CmiMode] = model.CmiModeReview
	return withDocument(attempt, doc, false)
}

// MarkResumed は再開時の cmi.entry = resume の書き込みを行ったコピーを返します。
// 受験番号と派生フィールドは変えない。
func MarkResumed(attempt *model.TestAttempt) (*model.TestAttempt, error) {
	if attempt.Terminated {
		return nil, model.ErrSessionClosed
	}
	doc, err := Decode(attempt.CmiDatamodel)
	if err != nil {
		return nil, err
	}
	doc[model.CmiEntry] = model.CmiEntryResume
	return withDocument(attempt, doc, false)
}

func withDocument(attempt *model.TestAttempt, doc Document, derive bool) (*model.TestAttempt, error) {
	encoded, err := doc.Encode()
	if err != nil {
		return nil, err
	}
	updated := attempt.Clone()
	updated.CmiDatamodel = encoded
	if derive {
		d := Derive(doc)
		updated.CompletionStatus = d.CompletionStatus
		updated.SuccessStatus = d.SuccessStatus
		updated.ScoreScaled = d.ScoreScaled
	}
	return updated, nil
}
