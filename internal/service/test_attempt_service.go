//go:generate mockery --name TestAttemptService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"go_scorm_attempt_keep/internal/cmi"
	"go_scorm_attempt_keep/internal/config"
	"go_scorm_attempt_keep/internal/middleware"
	"go_scorm_attempt_keep/internal/model"
	"go_scorm_attempt_keep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TestAttemptService はテスト受験セッションのライフサイクル
// (作成・再開、進捗更新、レビュー、終了) を扱います。
type TestAttemptService interface {
	// GetOrCreateSession は未完了の最新受験を再開するか、新しい受験を作成します
	GetOrCreateSession(ctx context.Context, taskID uuid.UUID) (*model.TestAttempt, error)
	GetTestAttempt(ctx context.Context, attemptID uuid.UUID) (*model.TestAttempt, error)
	// ListTestAttempts は受験番号の降順で返します
	ListTestAttempts(ctx context.Context, taskID uuid.UUID) ([]*model.TestAttempt, error)
	GetLatest(ctx context.Context, taskID uuid.UUID, completedOnly bool) (*model.TestAttempt, error)
	// UpdateTestAttempt はCMIデータを反映し、terminate なら続けて終了します
	UpdateTestAttempt(ctx context.Context, attemptID uuid.UUID, rawDocument []byte, terminate bool) (*model.TestAttempt, error)
	RequestReview(ctx context.Context, attemptID uuid.UUID) (*model.TestAttempt, error)
	TerminateTestAttempt(ctx context.Context, attemptID uuid.UUID) (*model.TestAttempt, error)
	// DeleteTestAttempt は常に model.ErrNotSupported (受験記録は削除しない)
	DeleteTestAttempt(ctx context.Context, attemptID uuid.UUID) error
}

type testAttemptService struct {
	db          *gorm.DB
	taskRepo    repository.TaskRepository
	attemptRepo repository.TestAttemptRepository
	sink        NotificationSink
	mail        *terminationMailer
	retryLimit  int
	metrics     *lifecycleMetrics
	now         func() time.Time
}

// NewTestAttemptService は mailer が nil ならメール通知なしで動きます
func NewTestAttemptService(
	db *gorm.DB,
	taskRepo repository.TaskRepository,
	attemptRepo repository.TestAttemptRepository,
	sink NotificationSink,
	mailer Mailer,
	cfg *config.Config,
) TestAttemptService {
	retryLimit := cfg.App.TransactionRetryLimit
	if retryLimit <= 0 {
		retryLimit = config.DefaultTransactionRetryLimit
	}
	return &testAttemptService{
		db:          db,
		taskRepo:    taskRepo,
		attemptRepo: attemptRepo,
		sink:        sink,
		mail:        &terminationMailer{mailer: mailer, to: cfg.Notify.To},
		retryLimit:  retryLimit,
		metrics:     newLifecycleMetrics(),
		now:         time.Now,
	}
}

func (s *testAttemptService) GetOrCreateSession(ctx context.Context, taskID uuid.UUID) (*model.TestAttempt, error) {
	logger := middleware.GetLogger(ctx).With("task_id", taskID)

	var result *model.TestAttempt
	var resumed bool
	err := s.inTransaction(ctx, "GetOrCreateSession", func(tx *gorm.DB) error {
		// タスク行をロックして受験番号の採番を直列化する
		if err := s.taskRepo.LockByID(ctx, tx, taskID); err != nil {
			return err
		}
		task, err := s.authorizeTask(ctx, tx, taskID)
		if err != nil {
			return err
		}
		if task.TaskDefinition == nil || !task.TaskDefinition.ScormEnabled {
			return model.ErrScormDisabled
		}

		attempts, err := s.attemptRepo.ListByTask(ctx, tx, taskID)
		if err != nil {
			return err
		}
		decision, err := DecideAttempt(task.TaskDefinition.AttemptLimit(), attempts)
		if err != nil {
			return err
		}

		if decision.Resume != nil {
			updated, err := cmi.MarkResumed(decision.Resume)
			if err != nil {
				return err
			}
			if err := s.attemptRepo.Update(ctx, tx, updated); err != nil {
				return err
			}
			result, resumed = updated, true
			return nil
		}

		created, err := s.newAttempt(task, decision.NextNumber)
		if err != nil {
			return err
		}
		if err := s.attemptRepo.Create(ctx, tx, created); err != nil {
			return err
		}
		result, resumed = created, false
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrAttemptLimitExceeded) {
			s.metrics.session(ctx, "limit_exceeded")
		}
		return nil, s.toAppError(ctx, err, "テスト受験の開始に失敗しました。")
	}

	if resumed {
		s.metrics.session(ctx, "resumed")
		logger.Info("Test attempt resumed", "test_attempt_id", result.TestAttemptID, "attempt_number", result.AttemptNumber)
	} else {
		s.metrics.session(ctx, "created")
		logger.Info("Test attempt created", "test_attempt_id", result.TestAttemptID, "attempt_number", result.AttemptNumber)
	}
	return result, nil
}

// newAttempt は初期CMIデータを持つ新しい受験を組み立てます
func (s *testAttemptService) newAttempt(task *model.Task, number int) (*model.TestAttempt, error) {
	doc, err := cmi.SeedInitialDocument(task)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInternalServer, err)
	}
	encoded, err := doc.Encode()
	if err != nil {
		return nil, err
	}
	name := model.DefaultTestAttemptName
	derived := cmi.Derive(doc)
	return &model.TestAttempt{
		TestAttemptID:    uuid.New(),
		TaskID:           task.TaskID,
		AttemptNumber:    number,
		Name:             &name,
		AttemptedTime:    s.now(),
		CompletionStatus: derived.CompletionStatus,
		SuccessStatus:    derived.SuccessStatus,
		ScoreScaled:      derived.ScoreScaled,
		CmiDatamodel:     encoded,
	}, nil
}

func (s *testAttemptService) GetTestAttempt(ctx context.Context, attemptID uuid.UUID) (*model.TestAttempt, error) {
	attempt, err := s.attemptRepo.FindByID(ctx, s.db, attemptID)
	if err != nil {
		return nil, s.toAppError(ctx, err, "テスト受験の取得に失敗しました。")
	}
	if _, err := s.authorizeTask(ctx, s.db, attempt.TaskID); err != nil {
		return nil, s.toAppError(ctx, err, "テスト受験の取得に失敗しました。")
	}
	return attempt, nil
}

func (s *testAttemptService) ListTestAttempts(ctx context.Context, taskID uuid.UUID) ([]*model.TestAttempt, error) {
	if _, err := s.authorizeTask(ctx, s.db, taskID); err != nil {
		return nil, s.toAppError(ctx, err, "テスト受験一覧の取得に失敗しました。")
	}
	attempts, err := s.attemptRepo.ListByTask(ctx, s.db, taskID)
	if err != nil {
		return nil, s.toAppError(ctx, err, "テスト受験一覧の取得に失敗しました。")
	}
	return attempts, nil
}

func (s *testAttemptService) GetLatest(ctx context.Context, taskID uuid.UUID, completedOnly bool) (*model.TestAttempt, error) {
	if _, err := s.authorizeTask(ctx, s.db, taskID); err != nil {
		return nil, s.toAppError(ctx, err, "最新のテスト受験の取得に失敗しました。")
	}
	attempt, err := s.attemptRepo.FindLatest(ctx, s.db, taskID, completedOnly)
	if err != nil {
		return nil, s.toAppError(ctx, err, "最新のテスト受験の取得に失敗しました。")
	}
	return attempt, nil
}

func (s *testAttemptService) UpdateTestAttempt(ctx context.Context, attemptID uuid.UUID, rawDocument []byte, terminate bool) (*model.TestAttempt, error) {
	logger := middleware.GetLogger(ctx).With("test_attempt_id", attemptID)

	var result *model.TestAttempt
	var terminatedNow bool
	err := s.inTransaction(ctx, "UpdateTestAttempt", func(tx *gorm.DB) error {
		terminatedNow = false
		attempt, err := s.lockAttempt(ctx, tx, attemptID)
		if err != nil {
			return err
		}

		// 終了済みへの再送された終了要求はそのまま返す (クライアントのリトライ対策)
		if attempt.Terminated && terminate {
			logger.Info("Duplicate termination request ignored")
			result = attempt
			return nil
		}

		updated, err := cmi.ApplyUpdate(attempt, rawDocument)
		if err != nil {
			return err
		}
		if terminate {
			updated.Terminated = true
		}
		if err := s.attemptRepo.Update(ctx, tx, updated); err != nil {
			return err
		}
		if terminate {
			if err := s.sink.TestAttemptTerminated(ctx, tx, updated); err != nil {
				return err
			}
			terminatedNow = true
		}
		result = updated
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, model.ErrMalformedDocument):
			s.metrics.update(ctx, "malformed")
		case errors.Is(err, model.ErrSessionClosed):
			s.metrics.update(ctx, "closed")
		}
		return nil, s.toAppError(ctx, err, "テスト受験の更新に失敗しました。")
	}

	s.metrics.update(ctx, "ok")
	logger.Info("Test attempt updated",
		"completion_status", result.CompletionStatus,
		"success_status", result.SuccessStatus,
		"terminated", result.Terminated,
	)
	if terminatedNow {
		s.afterTermination(ctx, result)
	}
	return result, nil
}

func (s *testAttemptService) RequestReview(ctx context.Context, attemptID uuid.UUID) (*model.TestAttempt, error) {
	logger := middleware.GetLogger(ctx).With("test_attempt_id", attemptID)

	var result *model.TestAttempt
	err := s.inTransaction(ctx, "RequestReview", func(tx *gorm.DB) error {
		attempt, err := s.attemptRepo.FindByIDForUpdate(ctx, tx, attemptID)
		if err != nil {
			return err
		}
		task, err := s.authorizeTask(ctx, tx, attempt.TaskID)
		if err != nil {
			return err
		}
		if attempt.Terminated {
			return model.ErrSessionClosed
		}
		if task.TaskDefinition == nil || !task.TaskDefinition.ScormAllowReview {
			return model.ErrReviewNotAllowed
		}

		reviewed, err := cmi.ApplyReview(attempt)
		if err != nil {
			return err
		}
		// 既にレビューモードなら書き込まない
		if bytes.Equal(reviewed.CmiDatamodel, attempt.CmiDatamodel) {
			result = attempt
			return nil
		}
		if err := s.attemptRepo.Update(ctx, tx, reviewed); err != nil {
			return err
		}
		result = reviewed
		return nil
	})
	if err != nil {
		return nil, s.toAppError(ctx, err, "テストの見直しを開始できませんでした。")
	}

	logger.Info("Test attempt switched to review mode")
	return result, nil
}

func (s *testAttemptService) TerminateTestAttempt(ctx context.Context, attemptID uuid.UUID) (*model.TestAttempt, error) {
	logger := middleware.GetLogger(ctx).With("test_attempt_id", attemptID)

	var result *model.TestAttempt
	var terminatedNow bool
	err := s.inTransaction(ctx, "TerminateTestAttempt", func(tx *gorm.DB) error {
		terminatedNow = false
		attempt, err := s.lockAttempt(ctx, tx, attemptID)
		if err != nil {
			return err
		}
		if attempt.Terminated {
			logger.Info("Duplicate termination request ignored")
			result = attempt
			return nil
		}

		updated := attempt.Clone()
		updated.Terminated = true
		if err := s.attemptRepo.Update(ctx, tx, updated); err != nil {
			return err
		}
		if err := s.sink.TestAttemptTerminated(ctx, tx, updated); err != nil {
			return err
		}
		result, terminatedNow = updated, true
		return nil
	})
	if err != nil {
		return nil, s.toAppError(ctx, err, "テスト受験を終了できませんでした。")
	}

	if terminatedNow {
		s.afterTermination(ctx, result)
	}
	return result, nil
}

func (s *testAttemptService) DeleteTestAttempt(ctx context.Context, attemptID uuid.UUID) error {
	middleware.GetLogger(ctx).Warn("Rejected test attempt deletion", "test_attempt_id", attemptID)
	return model.NewAppError("NOT_SUPPORTED", "テスト受験の記録は削除できません。", "", model.ErrNotSupported)
}

// afterTermination はコミット後の処理 (メトリクス・メール)
func (s *testAttemptService) afterTermination(ctx context.Context, attempt *model.TestAttempt) {
	s.metrics.terminated(ctx)
	middleware.GetLogger(ctx).Info("Test attempt terminated",
		"test_attempt_id", attempt.TestAttemptID,
		"attempt_number", attempt.AttemptNumber,
	)
	s.mail.send(ctx, attempt)
}

// lockAttempt は受験行をロックして取得し、タスクの所有者か確認します
func (s *testAttemptService) lockAttempt(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) (*model.TestAttempt, error) {
	attempt, err := s.attemptRepo.FindByIDForUpdate(ctx, tx, attemptID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizeTask(ctx, tx, attempt.TaskID); err != nil {
		return nil, err
	}
	return attempt, nil
}

// authorizeTask はタスクを読み込み、リクエスト元の所有か確認します。
// ロールごとの可否は RequirePermission で判定済みで、ここでは所有者だけを見る。
// 範囲が ScopeAnyTask なら他人のタスクも可。リクエスト元が無い場合は確認しない。
func (s *testAttemptService) authorizeTask(ctx context.Context, db *gorm.DB, taskID uuid.UUID) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, db, taskID)
	if err != nil {
		return nil, err
	}
	principal, ok := model.PrincipalFromContext(ctx)
	if !ok {
		return task, nil
	}
	if principal.UserID == task.LearnerID || model.AccessScopeFromContext(ctx) == model.ScopeAnyTask {
		return task, nil
	}
	middleware.GetLogger(ctx).Warn("Access to task denied",
		"task_id", taskID,
		"user_id", principal.UserID,
		"role", principal.Role,
	)
	return nil, model.ErrForbidden
}

// inTransaction は fn をトランザクション内で実行し、書き込み競合なら retryLimit 回までやり直します
func (s *testAttemptService) inTransaction(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	logger := middleware.GetLogger(ctx)

	var lastErr error
	for i := 1; i <= s.retryLimit; i++ {
		lastErr = s.db.WithContext(ctx).Transaction(fn)
		if lastErr == nil || !repository.IsRetryable(lastErr) {
			return lastErr
		}
		s.metrics.retried(ctx, op)
		logger.Warn("Transaction conflict, retrying", "op", op, "try", i, "limit", s.retryLimit, "error", lastErr)
	}

	logger.Error("Transaction conflict persisted after retries", "op", op, "limit", s.retryLimit, "error", lastErr)
	return model.NewAppError("TRANSACTION_CONFLICT", "他の更新と競合したため処理できませんでした。時間をおいて再度お試しください。", "",
		fmt.Errorf("%w: %s: %v", model.ErrInternalServer, op, lastErr))
}

// toAppError はリポジトリ・同期処理のエラーをクライアント向けの AppError に変換します
func (s *testAttemptService) toAppError(ctx context.Context, err error, internalMsg string) error {
	var appErr *model.AppError
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		return model.NewAppError("NOT_FOUND", "タスクまたはテスト受験が見つかりません。", "", err)
	case errors.Is(err, model.ErrMalformedDocument):
		return model.NewAppError("MALFORMED_CMI_DATAMODEL", "CMIデータの形式が正しくありません。", "cmi_datamodel", err)
	case errors.Is(err, model.ErrSessionClosed):
		return model.NewAppError("TEST_ATTEMPT_TERMINATED", "このテストは既に終了しています。", "", err)
	case errors.Is(err, model.ErrInvalidState):
		return model.NewAppError("TEST_ATTEMPT_NOT_COMPLETED", "完了していないテストは見直しできません。", "", err)
	case errors.Is(err, model.ErrAttemptLimitExceeded):
		return model.NewAppError("ATTEMPT_LIMIT_EXCEEDED", "受験回数の上限に達しています。", "", err)
	case errors.Is(err, model.ErrScormDisabled):
		return model.NewAppError("SCORM_DISABLED", "このタスクではテストが有効になっていません。", "", err)
	case errors.Is(err, model.ErrReviewNotAllowed):
		return model.NewAppError("REVIEW_NOT_ALLOWED", "このタスクではテストの見直しは許可されていません。", "", err)
	case errors.Is(err, model.ErrForbidden):
		return model.NewAppError("FORBIDDEN", "この操作を行う権限がありません。", "", err)
	default:
		middleware.GetLogger(ctx).Error("Unexpected error in test attempt service", "error", err)
		return model.NewAppError("INTERNAL_SERVER_ERROR", internalMsg, "", err)
	}
}
