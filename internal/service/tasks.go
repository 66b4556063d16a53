package service

import (
	"context"
	"time"

	"github.com/rlammers/microblog-api/internal/models"
	"github.com/rlammers/microblog-api/internal/repo"
	"github.com/rlammers/microblog-api/internal/tasks"
)

// TaskService launches background jobs and answers status polls.
type TaskService struct {
	Repo   *repo.GormRepo
	Runner *tasks.Runner

	// Tick is the count-seconds step duration, injectable for tests.
	Tick time.Duration
}

// TaskStatus is a task row enriched with the live percentage from the
// progress store.
type TaskStatus struct {
	models.Task
	Progress int `json:"progress"`
}

func (s *TaskService) tick() time.Duration {
	if s.Tick > 0 {
		return s.Tick
	}
	return time.Second
}

// LaunchCountSeconds enqueues the count-seconds demo job. Returns
// repo.ErrTaskInProgress when the user already has one running.
func (s *TaskService) LaunchCountSeconds(ctx context.Context, user *models.User, n int) (*models.Task, error) {
	return s.Runner.Launch(ctx, user, tasks.TaskCountSeconds, "Counting seconds...",
		tasks.CountSeconds(n, s.tick()))
}

func (s *TaskService) ActiveTasks(ctx context.Context, user *models.User) ([]TaskStatus, error) {
	rows, err := s.Repo.TasksInProgress(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.withProgress(ctx, rows)
}

func (s *TaskService) FinishedTasks(ctx context.Context, user *models.User) ([]TaskStatus, error) {
	rows, err := s.Repo.CompletedTasks(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.withProgress(ctx, rows)
}

func (s *TaskService) withProgress(ctx context.Context, rows []models.Task) ([]TaskStatus, error) {
	out := make([]TaskStatus, 0, len(rows))
	for _, t := range rows {
		pct, err := s.Runner.Progress.Get(ctx, t.TaskID)
		if err != nil {
			return nil, err
		}
		out = append(out, TaskStatus{Task: t, Progress: pct})
	}
	return out, nil
}
