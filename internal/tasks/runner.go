package tasks

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/rlammers/microblog-api/internal/models"
	"github.com/rlammers/microblog-api/internal/repo"
)

// JobFunc is a background job body. It receives an explicit Reporter at
// launch time and reports percentages through it cooperatively.
type JobFunc func(ctx context.Context, p *Reporter) error

// Reporter is the progress handle handed to a running job.
type Reporter struct {
	runner *Runner
	jobID  string
}

// Report persists the latest percentage. Reaching 100 also flips the task
// row's complete flag.
func (p *Reporter) Report(ctx context.Context, pct int) {
	if err := p.runner.Progress.Set(ctx, p.jobID, pct); err != nil {
		p.runner.Logger.Error("progress update failed", "job_id", p.jobID, "error", err)
	}
	if pct >= 100 {
		if err := p.runner.Repo.CompleteTask(ctx, p.jobID); err != nil {
			p.runner.Logger.Error("task completion failed", "job_id", p.jobID, "error", err)
		}
	}
}

// Runner executes jobs out of the request path. The launching request
// returns as soon as the task row is committed; the job itself runs in its
// own goroutine detached from the request context.
type Runner struct {
	Repo     *repo.GormRepo
	Progress *ProgressStore
	Logger   *slog.Logger

	wg sync.WaitGroup
}

func NewRunner(r *repo.GormRepo, ps *ProgressStore, l *slog.Logger) *Runner {
	return &Runner{Repo: r, Progress: ps, Logger: l}
}

// Launch rejects a second incomplete task with the same name for the same
// user, then commits the task row before the goroutine starts so progress
// polling can find the job immediately.
func (r *Runner) Launch(ctx context.Context, user *models.User, name, description string, job JobFunc) (*models.Task, error) {
	active, err := r.Repo.ActiveTaskByName(ctx, user.ID, name)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, repo.ErrTaskInProgress
	}

	jobID := uuid.NewString()
	task := &models.Task{
		TaskID:      jobID,
		Name:        name,
		Description: description,
		UserID:      user.ID,
	}
	if err := r.Repo.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	if err := r.Progress.Set(ctx, jobID, 0); err != nil {
		r.Logger.Error("initial progress write failed", "job_id", jobID, "error", err)
	}

	r.wg.Add(1)
	go r.run(jobID, name, job)

	return task, nil
}

func (r *Runner) run(jobID, name string, job JobFunc) {
	defer r.wg.Done()

	// Detached from the request context: the caller already got its
	// acknowledgement.
	ctx := context.Background()
	l := r.Logger.With("job_id", jobID, "task", name)

	defer func() {
		if rec := recover(); rec != nil {
			l.Error("unhandled panic in background job", "panic", rec)
		}
		// Progress always ends at 100, crash or not, so polling clients
		// terminate their wait.
		if err := r.Progress.Set(ctx, jobID, 100); err != nil {
			l.Error("final progress write failed", "error", err)
		}
		if err := r.Repo.CompleteTask(ctx, jobID); err != nil {
			l.Error("task completion failed", "error", err)
		}
	}()

	if err := job(ctx, &Reporter{runner: r, jobID: jobID}); err != nil {
		l.Error("background job failed", "error", err)
	}
}

// Wait blocks until every launched job has finished. Used on shutdown and
// in tests.
func (r *Runner) Wait() { r.wg.Wait() }
