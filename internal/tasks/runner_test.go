package tasks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlammers/microblog-api/internal/db"
	"github.com/rlammers/microblog-api/internal/hash"
	"github.com/rlammers/microblog-api/internal/models"
	"github.com/rlammers/microblog-api/internal/repo"
)

func newTestRunner(t *testing.T) (*Runner, *repo.GormRepo, *models.User) {
	t.Helper()

	gdb, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "tasks_test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	gormRepo := &repo.GormRepo{DB: gdb}

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := NewRunner(gormRepo, NewProgressStore(rdb), logger)

	pwHash, err := hash.HashPassword("Secret123")
	require.NoError(t, err)
	user := &models.User{
		Username:     "alice",
		FirstName:    "Alice",
		LastName:     "Tester",
		Email:        "alice@example.com",
		PasswordHash: pwHash,
		Birthday:     time.Date(1990, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, gormRepo.CreateUser(context.Background(), user))

	return runner, gormRepo, user
}

func TestProgressStore_MissingKeyReadsAsFinished(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := NewProgressStore(rdb)
	ctx := context.Background()

	pct, err := store.Get(ctx, "never-launched")
	require.NoError(t, err)
	assert.Equal(t, 100, pct)

	require.NoError(t, store.Set(ctx, "job-1", 37))
	pct, err = store.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, 37, pct)

	// Out-of-range reports are clamped.
	require.NoError(t, store.Set(ctx, "job-1", 250))
	pct, err = store.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, 100, pct)
}

func TestLaunch_TaskRowVisibleBeforeJobRuns(t *testing.T) {
	t.Parallel()

	runner, gormRepo, user := newTestRunner(t)
	ctx := context.Background()

	release := make(chan struct{})
	task, err := runner.Launch(ctx, user, "count_seconds", "Counting seconds...",
		func(ctx context.Context, p *Reporter) error {
			<-release
			p.Report(ctx, 100)
			return nil
		})
	require.NoError(t, err)
	require.NotEmpty(t, task.TaskID)

	// The job has not finished, yet the task and its progress are
	// already pollable.
	active, err := gormRepo.TasksInProgress(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)

	pct, err := runner.Progress.Get(ctx, task.TaskID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, pct, 0)
	assert.LessOrEqual(t, pct, 100)

	close(release)
	runner.Wait()

	pct, err = runner.Progress.Get(ctx, task.TaskID)
	require.NoError(t, err)
	assert.Equal(t, 100, pct)

	finished, err := gormRepo.CompletedTasks(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, finished, 1)
	assert.True(t, finished[0].Complete)
}

func TestLaunch_DuplicateActiveName(t *testing.T) {
	t.Parallel()

	runner, gormRepo, user := newTestRunner(t)
	ctx := context.Background()

	release := make(chan struct{})
	_, err := runner.Launch(ctx, user, "count_seconds", "Counting seconds...",
		func(ctx context.Context, p *Reporter) error {
			<-release
			return nil
		})
	require.NoError(t, err)

	_, err = runner.Launch(ctx, user, "count_seconds", "Counting seconds...",
		func(ctx context.Context, p *Reporter) error { return nil })
	assert.ErrorIs(t, err, repo.ErrTaskInProgress)

	// No second row was created.
	var count int64
	require.NoError(t, gormRepo.DB.Model(&models.Task{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	close(release)
	runner.Wait()
}

func TestRun_PanicStillFinishesAtHundred(t *testing.T) {
	t.Parallel()

	runner, gormRepo, user := newTestRunner(t)
	ctx := context.Background()

	task, err := runner.Launch(ctx, user, "count_seconds", "Counting seconds...",
		func(ctx context.Context, p *Reporter) error {
			p.Report(ctx, 40)
			panic("boom")
		})
	require.NoError(t, err)

	runner.Wait()

	pct, err := runner.Progress.Get(ctx, task.TaskID)
	require.NoError(t, err)
	assert.Equal(t, 100, pct)

	finished, err := gormRepo.CompletedTasks(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, finished, 1)
}

func TestRun_JobErrorStillFinishesAtHundred(t *testing.T) {
	t.Parallel()

	runner, _, user := newTestRunner(t)
	ctx := context.Background()

	task, err := runner.Launch(ctx, user, "count_seconds", "Counting seconds...",
		func(ctx context.Context, p *Reporter) error {
			p.Report(ctx, 10)
			return errors.New("upstream exploded")
		})
	require.NoError(t, err)

	runner.Wait()

	pct, err := runner.Progress.Get(ctx, task.TaskID)
	require.NoError(t, err)
	assert.Equal(t, 100, pct)
}

func TestCountSeconds_ReportsMonotonicProgress(t *testing.T) {
	t.Parallel()

	runner, gormRepo, user := newTestRunner(t)
	ctx := context.Background()

	task, err := runner.Launch(ctx, user, "count_seconds", "Counting seconds...",
		CountSeconds(4, time.Millisecond))
	require.NoError(t, err)

	runner.Wait()

	pct, err := runner.Progress.Get(ctx, task.TaskID)
	require.NoError(t, err)
	assert.Equal(t, 100, pct)

	active, err := gormRepo.TasksInProgress(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, active)
}
