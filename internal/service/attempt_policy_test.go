package service

import (
	"testing"
	"time"

	"go_scorm_attempt_keep/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// simulateTask は DecideAttempt の結果どおりに受験を作る/再開する最小のシミュレーション
type simulateTask struct {
	taskID   uuid.UUID
	attempts []*model.TestAttempt
	clock    time.Time
}

func (s *simulateTask) decide(t *testing.T, limit int) (AttemptDecision, error) {
	t.Helper()
	d, err := DecideAttempt(limit, s.attempts)
	if err == nil && d.Resume == nil {
		s.clock = s.clock.Add(time.Minute)
		s.attempts = append(s.attempts, &model.TestAttempt{
			TestAttemptID: uuid.New(),
			TaskID:        s.taskID,
			AttemptNumber: d.NextNumber,
			AttemptedTime: s.clock,
		})
	}
	return d, err
}

func (s *simulateTask) last() *model.TestAttempt { return s.attempts[len(s.attempts)-1] }

func TestDecideAttempt_上限2のシナリオ(t *testing.T) {
	sim := &simulateTask{taskID: uuid.New(), clock: time.Now()}

	d, err := sim.decide(t, 2)
	require.NoError(t, err)
	assert.Nil(t, d.Resume)
	assert.Equal(t, 1, d.NextNumber)

	sim.last().CompletionStatus = true

	d, err = sim.decide(t, 2)
	require.NoError(t, err)
	assert.Nil(t, d.Resume)
	assert.Equal(t, 2, d.NextNumber)

	// 2回目が未完了の間は再開になる
	d, err = sim.decide(t, 2)
	require.NoError(t, err)
	require.NotNil(t, d.Resume)
	assert.Equal(t, 2, d.Resume.AttemptNumber)

	sim.last().CompletionStatus = true

	_, err = sim.decide(t, 2)
	assert.ErrorIs(t, err, model.ErrAttemptLimitExceeded)
	assert.Len(t, sim.attempts, 2)
}

func TestDecideAttempt(t *testing.T) {
	taskID := uuid.New()
	attempt := func(n int, completed, terminated bool) *model.TestAttempt {
		return &model.TestAttempt{TaskID: taskID, AttemptNumber: n, CompletionStatus: completed, Terminated: terminated}
	}

	tests := []struct {
		name       string
		limit      int
		attempts   []*model.TestAttempt
		wantResume int // 0 なら新規作成
		wantNext   int
		wantErr    error
	}{
		{name: "受験なし・無制限", limit: 0, attempts: nil, wantNext: 1},
		{name: "最新が未完了なら再開", limit: 0, attempts: []*model.TestAttempt{attempt(1, true, false), attempt(2, false, false)}, wantResume: 2},
		{name: "最新が終了済みなら新規", limit: 0, attempts: []*model.TestAttempt{attempt(1, false, true)}, wantNext: 2},
		{name: "最新が完了済みなら新規", limit: 3, attempts: []*model.TestAttempt{attempt(1, true, false)}, wantNext: 2},
		{name: "古い未完了は再開しない", limit: 0, attempts: []*model.TestAttempt{attempt(1, false, false), attempt(2, true, false)}, wantNext: 3},
		{name: "上限到達", limit: 1, attempts: []*model.TestAttempt{attempt(1, false, true)}, wantErr: model.ErrAttemptLimitExceeded},
		{name: "上限到達でも未完了なら再開", limit: 1, attempts: []*model.TestAttempt{attempt(1, false, false)}, wantResume: 1},
		{name: "並び順に依存しない", limit: 0, attempts: []*model.TestAttempt{attempt(3, false, false), attempt(1, true, false), attempt(2, true, false)}, wantResume: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := DecideAttempt(tt.limit, tt.attempts)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.wantResume > 0 {
				require.NotNil(t, d.Resume)
				assert.Equal(t, tt.wantResume, d.Resume.AttemptNumber)
			} else {
				assert.Nil(t, d.Resume)
				assert.Equal(t, tt.wantNext, d.NextNumber)
			}
		})
	}
}

// 受験番号が最大の受験と、最も新しく作られた受験は常に一致する
func TestDecideAttempt_最大番号と最新作成は一致(t *testing.T) {
	sim := &simulateTask{taskID: uuid.New(), clock: time.Now()}

	for i := 0; i < 6; i++ {
		_, err := sim.decide(t, 0)
		require.NoError(t, err)

		var mostRecent *model.TestAttempt
		for _, a := range sim.attempts {
			if mostRecent == nil || a.AttemptedTime.After(mostRecent.AttemptedTime) {
				mostRecent = a
			}
		}
		assert.Same(t, mostRecent, latestAttempt(sim.attempts))

		// 番号は 1..N で欠番・重複なし
		for idx, a := range sim.attempts {
			assert.Equal(t, idx+1, a.AttemptNumber)
		}

		// 交互に完了・終了させて次の受験を作らせる
		if i%2 == 0 {
			sim.last().CompletionStatus = true
		} else {
			sim.last().Terminated = true
		}
	}
	assert.Len(t, sim.attempts, 6)
}
