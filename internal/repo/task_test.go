package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlammers/microblog-api/internal/models"
)

func TestCreateTask_DuplicateActiveRejectedAtStoreLevel(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()

	user := testUser(t, "alice", "alice@example.com")
	require.NoError(t, r.CreateUser(ctx, user))

	first := &models.Task{TaskID: uuid.NewString(), Name: "count_seconds", UserID: user.ID}
	require.NoError(t, r.CreateTask(ctx, first))

	// Second incomplete task with the same name hits the partial unique
	// index even without the pre-check.
	second := &models.Task{TaskID: uuid.NewString(), Name: "count_seconds", UserID: user.ID}
	err := r.CreateTask(ctx, second)
	assert.ErrorIs(t, err, ErrTaskInProgress)

	// A different name is fine.
	other := &models.Task{TaskID: uuid.NewString(), Name: "export_data", UserID: user.ID}
	require.NoError(t, r.CreateTask(ctx, other))

	// Once the first completes, the name becomes available again.
	require.NoError(t, r.CompleteTask(ctx, first.TaskID))
	require.NoError(t, r.CreateTask(ctx, second))
}

func TestTaskLists_FilterByOwnerAndCompletion(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()

	alice := testUser(t, "alice", "alice@example.com")
	bob := testUser(t, "bob", "bob@example.com")
	require.NoError(t, r.CreateUser(ctx, alice))
	require.NoError(t, r.CreateUser(ctx, bob))

	running := &models.Task{TaskID: uuid.NewString(), Name: "count_seconds", UserID: alice.ID}
	require.NoError(t, r.CreateTask(ctx, running))
	done := &models.Task{TaskID: uuid.NewString(), Name: "export_data", UserID: alice.ID}
	require.NoError(t, r.CreateTask(ctx, done))
	require.NoError(t, r.CompleteTask(ctx, done.TaskID))

	bobs := &models.Task{TaskID: uuid.NewString(), Name: "count_seconds", UserID: bob.ID}
	require.NoError(t, r.CreateTask(ctx, bobs))

	active, err := r.TasksInProgress(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, running.TaskID, active[0].TaskID)

	finished, err := r.CompletedTasks(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, finished, 1)
	assert.Equal(t, done.TaskID, finished[0].TaskID)

	found, err := r.ActiveTaskByName(ctx, alice.ID, "count_seconds")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, running.TaskID, found.TaskID)

	none, err := r.ActiveTaskByName(ctx, alice.ID, "export_data")
	require.NoError(t, err)
	assert.Nil(t, none)
}
