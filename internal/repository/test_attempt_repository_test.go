package repository_test

import (
	"context"
	"testing"
	"time"

	"go_scorm_attempt_keep/internal/model"
	"go_scorm_attempt_keep/internal/repository"
	"go_scorm_attempt_keep/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newAttempt(taskID uuid.UUID, number int) *model.TestAttempt {
	return &model.TestAttempt{
		TestAttemptID: uuid.New(),
		TaskID:        taskID,
		AttemptNumber: number,
		AttemptedTime: time.Now(),
		CmiDatamodel:  datatypes.JSON(`{"cmi.entry":"ab-initio"}`),
	}
}

func TestTestAttemptRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := repository.NewGormTestAttemptRepository()
	task := testutil.CreateTask(t, db, testutil.TaskFixture{})

	a := newAttempt(task.TaskID, 1)
	require.NoError(t, repo.Create(ctx, db, a))

	found, err := repo.FindByID(ctx, db, a.TestAttemptID)
	require.NoError(t, err)
	assert.Equal(t, 1, found.AttemptNumber)
	assert.False(t, found.Terminated)
	assert.Nil(t, found.ScoreScaled)
	assert.JSONEq(t, `{"cmi.entry":"ab-initio"}`, string(found.CmiDatamodel))

	_, err = repo.FindByID(ctx, db, uuid.New())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestTestAttemptRepository_受験番号の重複はConflict(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := repository.NewGormTestAttemptRepository()
	task := testutil.CreateTask(t, db, testutil.TaskFixture{})

	require.NoError(t, repo.Create(ctx, db, newAttempt(task.TaskID, 1)))
	err := repo.Create(ctx, db, newAttempt(task.TaskID, 1))
	assert.ErrorIs(t, err, model.ErrConflict)

	// 別タスクなら同じ番号で良い
	other := testutil.CreateTask(t, db, testutil.TaskFixture{})
	assert.NoError(t, repo.Create(ctx, db, newAttempt(other.TaskID, 1)))
}

func TestTestAttemptRepository_ListAndLatest(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := repository.NewGormTestAttemptRepository()
	task := testutil.CreateTask(t, db, testutil.TaskFixture{})

	_, err := repo.FindLatest(ctx, db, task.TaskID, false)
	assert.ErrorIs(t, err, model.ErrNotFound)

	for n := 1; n <= 3; n++ {
		a := newAttempt(task.TaskID, n)
		a.CompletionStatus = n < 3 // 3回目だけ未完了
		require.NoError(t, db.Select("*").Create(a).Error)
	}

	list, err := repo.ListByTask(ctx, db, task.TaskID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int{3, 2, 1}, []int{list[0].AttemptNumber, list[1].AttemptNumber, list[2].AttemptNumber})

	latest, err := repo.FindLatest(ctx, db, task.TaskID, false)
	require.NoError(t, err)
	assert.Equal(t, 3, latest.AttemptNumber)

	latestCompleted, err := repo.FindLatest(ctx, db, task.TaskID, true)
	require.NoError(t, err)
	assert.Equal(t, 2, latestCompleted.AttemptNumber)
}

func TestTestAttemptRepository_Update(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := repository.NewGormTestAttemptRepository()
	task := testutil.CreateTask(t, db, testutil.TaskFixture{})

	a := newAttempt(task.TaskID, 1)
	require.NoError(t, repo.Create(ctx, db, a))

	t.Run("派生フィールドとCMIデータをまとめて更新", func(t *testing.T) {
		loaded, err := repo.FindByID(ctx, db, a.TestAttemptID)
		require.NoError(t, err)
		score := 0.85
		loaded.CmiDatamodel = datatypes.JSON(`{"cmi.completion_status":"completed"}`)
		loaded.CompletionStatus = true
		loaded.SuccessStatus = true
		loaded.ScoreScaled = &score
		loaded.AttemptNumber = 99 // 作成後は書き込まれない

		require.NoError(t, repo.Update(ctx, db, loaded))
		assert.Equal(t, 1, loaded.LockVersion)

		reloaded, err := repo.FindByID(ctx, db, a.TestAttemptID)
		require.NoError(t, err)
		assert.True(t, reloaded.CompletionStatus)
		assert.True(t, reloaded.SuccessStatus)
		require.NotNil(t, reloaded.ScoreScaled)
		assert.InDelta(t, 0.85, *reloaded.ScoreScaled, 1e-9)
		assert.Equal(t, 1, reloaded.AttemptNumber)
		assert.Equal(t, 1, reloaded.LockVersion)
	})

	t.Run("古いlock_versionでの更新はConflict", func(t *testing.T) {
		stale, err := repo.FindByID(ctx, db, a.TestAttemptID)
		require.NoError(t, err)
		fresh, err := repo.FindByID(ctx, db, a.TestAttemptID)
		require.NoError(t, err)

		require.NoError(t, repo.Update(ctx, db, fresh))
		stale.Terminated = true
		assert.ErrorIs(t, repo.Update(ctx, db, stale), model.ErrConflict)

		reloaded, err := repo.FindByID(ctx, db, a.TestAttemptID)
		require.NoError(t, err)
		assert.False(t, reloaded.Terminated)
	})

	t.Run("トランザクション内でロックして取得", func(t *testing.T) {
		err := db.Transaction(func(tx *gorm.DB) error {
			locked, err := repo.FindByIDForUpdate(ctx, tx, a.TestAttemptID)
			if err != nil {
				return err
			}
			locked.Terminated = true
			return repo.Update(ctx, tx, locked)
		})
		require.NoError(t, err)

		reloaded, err := repo.FindByID(ctx, db, a.TestAttemptID)
		require.NoError(t, err)
		assert.True(t, reloaded.Terminated)
	})
}

func TestTaskRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := repository.NewGormTaskRepository()
	task := testutil.CreateTask(t, db, testutil.TaskFixture{AttemptLimit: testutil.IntPtr(2), AllowReview: true})

	found, err := repo.FindByID(ctx, db, task.TaskID)
	require.NoError(t, err)
	require.NotNil(t, found.TaskDefinition)
	require.NotNil(t, found.Learner)
	assert.Equal(t, 2, found.TaskDefinition.AttemptLimit())
	assert.True(t, found.TaskDefinition.ScormAllowReview)
	assert.Equal(t, "Jane Doe", found.Learner.Name)
	assert.Equal(t, "S123", found.Learner.StudentID)

	_, err = repo.FindByID(ctx, db, uuid.New())
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repo.LockByID(ctx, tx, task.TaskID)
	}))
	err = db.Transaction(func(tx *gorm.DB) error {
		return repo.LockByID(ctx, tx, uuid.New())
	})
	assert.ErrorIs(t, err, model.ErrNotFound)

	def, err := repo.FindDefinitionByID(ctx, db, task.TaskDefinitionID)
	require.NoError(t, err)
	assert.True(t, def.ScormEnabled)
}

func TestCommentRepository_同じ受験への二重通知はConflict(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := repository.NewGormCommentRepository()
	task := testutil.CreateTask(t, db, testutil.TaskFixture{})
	attemptID := uuid.New()

	newComment := func() *model.TaskComment {
		return &model.TaskComment{
			CommentID:     uuid.New(),
			TaskID:        task.TaskID,
			Kind:          model.CommentKindTestAttemptTerminated,
			TestAttemptID: &attemptID,
			Comment:       "test attempt terminated",
		}
	}

	require.NoError(t, repo.Create(ctx, db, newComment()))
	assert.ErrorIs(t, repo.Create(ctx, db, newComment()), model.ErrConflict)

	comments, err := repo.ListByTask(ctx, db, task.TaskID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}
