package handlers_test

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"go_scorm_attempt_keep/internal/cmi"
	"go_scorm_attempt_keep/internal/config"
	"go_scorm_attempt_keep/internal/model"
	"go_scorm_attempt_keep/internal/repository"
	"go_scorm_attempt_keep/internal/service/mocks"
	"go_scorm_attempt_keep/internal/testutil"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// startPostgres は PostgreSQL コンテナを起動してマイグレーション済みの *gorm.DB を返します。
// -short 指定時や Docker が使えない環境ではスキップする。
func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
	pool.MaxWait = 120 * time.Second

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15-alpine",
		Env: []string{
			"POSTGRES_USER=user",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=scorm_attempt_keep",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL resource")
	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge PostgreSQL resource: %s", err)
		}
	})

	// コンテナ内から Docker を使う場合は TEST_DOCKER_HOST=host.docker.internal を指定する
	host := os.Getenv("TEST_DOCKER_HOST")
	if host == "" {
		host = "localhost"
	}
	dsn := fmt.Sprintf("postgres://user:secret@%s:%s/scorm_attempt_keep?sslmode=disable",
		host, resource.GetPort("5432/tcp"))

	logger := testutil.DiscardLogger()
	var db *gorm.DB
	err = pool.Retry(func() error {
		var errRetry error
		db, errRetry = repository.NewDB(config.DatabaseConfig{URL: dsn, AutoMigrate: true}, logger)
		if errRetry != nil {
			logger.Warn("Retry: DB connection attempt failed.", slog.Any("error", errRetry))
		}
		return errRetry
	})
	require.NoError(t, err, "Could not connect to PostgreSQL container")
	return db
}

// 行ロックと一意制約により、同時の開始要求でも受験は1件、番号は1になる
func TestTestAttemptAPI_PostgreSQL同時開始(t *testing.T) {
	db := startPostgres(t)
	task := testutil.CreateTask(t, db, testutil.TaskFixture{})
	api := newAPI(t, db)
	path := "/api/v1/tasks/" + task.TaskID.String() + "/test_attempts/session"

	const workers = 10
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			body, err := sendRequestE(api, httpRequestDetails{Method: http.MethodPost, Path: path, Headers: studentHeaders(task.LearnerID)}, http.StatusOK)
			if err != nil {
				return err
			}
			var resp model.TestAttemptResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return err
			}
			if resp.AttemptNumber != 1 {
				return fmt.Errorf("unexpected attempt number in %s", string(body))
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var count int64
	require.NoError(t, db.Model(&model.TestAttempt{}).Where("task_id = ?", task.TaskID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// 完了と開始を並行に繰り返しても受験番号に欠番・重複がない
func TestTestAttemptAPI_PostgreSQL連番(t *testing.T) {
	db := startPostgres(t)
	task := testutil.CreateTask(t, db, testutil.TaskFixture{})
	api := newAPI(t, db)
	headers := studentHeaders(task.LearnerID)

	var g errgroup.Group
	for w := 0; w < 4; w++ {
		g.Go(func() error {
			for i := 0; i < 5; i++ {
				body, err := sendRequestE(api, httpRequestDetails{Method: http.MethodPost, Path: "/api/v1/tasks/" + task.TaskID.String() + "/test_attempts/session", Headers: headers}, http.StatusOK)
				if err != nil {
					return err
				}
				var a model.TestAttemptResponse
				if err := json.Unmarshal(body, &a); err != nil {
					return err
				}
				if _, err := sendRequestE(api, httpRequestDetails{Method: http.MethodPatch, Path: "/api/v1/test_attempts/" + a.ID.String(), Headers: headers,
					Body: `{"cmi_datamodel":{"cmi.completion_status":"completed"}}`}, http.StatusOK); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var numbers []int
	require.NoError(t, db.Model(&model.TestAttempt{}).Where("task_id = ?", task.TaskID).Order("attempt_number").Pluck("attempt_number", &numbers).Error)
	require.NotEmpty(t, numbers)
	for i, n := range numbers {
		assert.Equal(t, i+1, n)
	}
}

// 同時の終了要求でも終了コメントとメールは1回だけ
func TestTestAttemptAPI_PostgreSQL同時終了(t *testing.T) {
	db := startPostgres(t)
	task := testutil.CreateTask(t, db, testutil.TaskFixture{})
	mailer := mocks.NewMailer(t)
	mailer.On("Send", mock.Anything, "tutor@example.com", mock.Anything, mock.Anything).Return(nil)
	api := newAPIWithMailer(t, db, mailer)
	headers := studentHeaders(task.LearnerID)

	body := sendRequest(t, api, httpRequestDetails{Method: http.MethodPost, Path: "/api/v1/tasks/" + task.TaskID.String() + "/test_attempts/session", Headers: headers}, http.StatusOK)
	a := decodeAttempt(t, body)

	const workers = 10
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		i := i
		g.Go(func() error {
			req := httpRequestDetails{Method: http.MethodPost, Path: "/api/v1/test_attempts/" + a.ID.String() + "/terminate", Headers: headers}
			if i%2 == 1 {
				req = httpRequestDetails{Method: http.MethodPatch, Path: "/api/v1/test_attempts/" + a.ID.String(), Headers: headers,
					Body: `{"cmi_datamodel":{"cmi.completion_status":"completed"},"terminated":true}`}
			}
			_, err := sendRequestE(api, req, http.StatusOK)
			return err
		})
	}
	require.NoError(t, g.Wait())

	var comments int64
	require.NoError(t, db.Model(&model.TaskComment{}).Where("test_attempt_id = ?", a.ID).Count(&comments).Error)
	assert.Equal(t, int64(1), comments)
	mailer.AssertNumberOfCalls(t, "Send", 1)
}

// 同じ受験への同時更新は行ロックで直列化され、最後の1件がそのまま残る
func TestTestAttemptAPI_PostgreSQL同時更新(t *testing.T) {
	db := startPostgres(t)
	task := testutil.CreateTask(t, db, testutil.TaskFixture{})
	api := newAPI(t, db)
	headers := studentHeaders(task.LearnerID)

	body := sendRequest(t, api, httpRequestDetails{Method: http.MethodPost, Path: "/api/v1/tasks/" + task.TaskID.String() + "/test_attempts/session", Headers: headers}, http.StatusOK)
	a := decodeAttempt(t, body)

	var before model.TestAttempt
	require.NoError(t, db.First(&before, "test_attempt_id = ?", a.ID).Error)

	const workers = 8
	var g errgroup.Group
	for i := 1; i <= workers; i++ {
		i := i
		g.Go(func() error {
			doc := fmt.Sprintf(`{"cmi.completion_status":"incomplete","cmi.score.scaled":"0.%d","cmi.suspend_data":"worker-%d","cmi.location":"page-%d"}`, i, i, i)
			_, err := sendRequestE(api, httpRequestDetails{Method: http.MethodPatch, Path: "/api/v1/test_attempts/" + a.ID.String(), Headers: headers,
				Body: `{"cmi_datamodel":` + doc + `}`}, http.StatusOK)
			return err
		})
	}
	require.NoError(t, g.Wait())

	var after model.TestAttempt
	require.NoError(t, db.First(&after, "test_attempt_id = ?", a.ID).Error)
	assert.Equal(t, before.LockVersion+workers, after.LockVersion)

	doc, err := cmi.Decode(after.CmiDatamodel)
	require.NoError(t, err)
	var winner int
	_, err = fmt.Sscanf(doc.String("cmi.suspend_data"), "worker-%d", &winner)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("page-%d", winner), doc.String("cmi.location"))
	assert.Equal(t, fmt.Sprintf("0.%d", winner), doc.String(model.CmiScoreScaled))

	derived := cmi.Derive(doc)
	assert.Equal(t, derived.CompletionStatus, after.CompletionStatus)
	require.NotNil(t, after.ScoreScaled)
	require.NotNil(t, derived.ScoreScaled)
	assert.InDelta(t, *derived.ScoreScaled, *after.ScoreScaled, 1e-9)
}
