package service

import (
	"fmt"

	"go_scorm_attempt_keep/internal/model"
)

// AttemptDecision は受験の再開か新規作成かの判定結果。
// Resume が nil でなければ再開、そうでなければ NextNumber で新規作成する。
type AttemptDecision struct {
	Resume     *model.TestAttempt
	NextNumber int
}

// DecideAttempt は既存の受験一覧から、再開する受験か新しい受験番号を決めます。
// limit が 0 なら無制限。上限に達していれば model.ErrAttemptLimitExceeded。
func DecideAttempt(limit int, attempts []*model.TestAttempt) (AttemptDecision, error) {
	latest := latestAttempt(attempts)
	if latest != nil && !latest.CompletionStatus && !latest.Terminated {
		return AttemptDecision{Resume: latest}, nil
	}

	count := len(attempts)
	if limit > 0 && count >= limit {
		return AttemptDecision{}, fmt.Errorf("%w: %d of %d attempts used", model.ErrAttemptLimitExceeded, count, limit)
	}
	return AttemptDecision{NextNumber: count + 1}, nil
}

// latestAttempt は受験番号が最大の受験を返します (並び順に依存しない)
func latestAttempt(attempts []*model.TestAttempt) *model.TestAttempt {
	var latest *model.TestAttempt
	for _, a := range attempts {
		if latest == nil || a.AttemptNumber > latest.AttemptNumber {
			latest = a
		}
	}
	return latest
}
