//go:generate mockery --name NotificationSink --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"fmt"
	"strconv"

	"go_scorm_attempt_keep/internal/middleware"
	"go_scorm_attempt_keep/internal/model"
	"go_scorm_attempt_keep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationSink は受験が終了状態に遷移したときに1回だけ呼ばれます。
// 受験の更新と同じトランザクション内で呼ばれるので、エラーを返せば終了もロールバックされる。
type NotificationSink interface {
	TestAttemptTerminated(ctx context.Context, tx *gorm.DB, attempt *model.TestAttempt) error
}

// commentNotificationSink は終了をタスクのコメントとして記録します。
// (test_attempt_id, kind) の一意制約で二重記録を防ぐ。
type commentNotificationSink struct {
	commentRepo repository.CommentRepository
}

func NewCommentNotificationSink(commentRepo repository.CommentRepository) NotificationSink {
	return &commentNotificationSink{commentRepo: commentRepo}
}

func (s *commentNotificationSink) TestAttemptTerminated(ctx context.Context, tx *gorm.DB, attempt *model.TestAttempt) error {
	attemptID := attempt.TestAttemptID
	comment := &model.TaskComment{
		CommentID:     uuid.New(),
		TaskID:        attempt.TaskID,
		Kind:          model.CommentKindTestAttemptTerminated,
		TestAttemptID: &attemptID,
		Comment:       terminationMessage(attempt),
	}
	return s.commentRepo.Create(ctx, tx, comment)
}

// terminationMailer はコミット後に担当者へメールでお知らせします。
// 送信失敗は記録済みの終了を取り消さない。
type terminationMailer struct {
	mailer Mailer
	to     string
}

func (m *terminationMailer) send(ctx context.Context, attempt *model.TestAttempt) {
	if m == nil || m.mailer == nil || m.to == "" {
		return
	}
	subject := fmt.Sprintf("[SCORM] テスト終了: %s", attemptName(attempt))
	if err := m.mailer.Send(ctx, m.to, subject, terminationMessage(attempt)); err != nil {
		middleware.GetLogger(ctx).Warn("Failed to send termination mail",
			"error", err,
			"test_attempt_id", attempt.TestAttemptID,
		)
	}
}

func attemptName(a *model.TestAttempt) string {
	if a.Name != nil && *a.Name != "" {
		return *a.Name
	}
	return model.DefaultTestAttemptName
}

func terminationMessage(a *model.TestAttempt) string {
	score := "-"
	if a.ScoreScaled != nil {
		score = strconv.FormatFloat(*a.ScoreScaled, 'f', -1, 64)
	}
	return fmt.Sprintf("テスト「%s」(%d回目) が終了しました。完了: %t / 合格: %t / スコア: %s",
		attemptName(a), a.AttemptNumber, a.CompletionStatus, a.SuccessStatus, score)
}
