package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/rlammers/microblog-api/internal/models"
)

var ErrTaskInProgress = errors.New("task already in progress")

// CreateTask inserts a task row. The partial unique index on
// (user_id, name) where complete = false turns a racing duplicate launch
// into ErrTaskInProgress instead of a second row.
func (r *GormRepo) CreateTask(ctx context.Context, t *models.Task) error {
	if err := r.DB.WithContext(ctx).Create(t).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrTaskInProgress
		}
		return err
	}
	return nil
}

// ActiveTaskByName returns the user's incomplete task with the given name,
// or nil when there is none.
func (r *GormRepo) ActiveTaskByName(ctx context.Context, userID uint, name string) (*models.Task, error) {
	var task models.Task
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND name = ? AND complete = ?", userID, name, false).
		First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *GormRepo) TasksInProgress(ctx context.Context, userID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND complete = ?", userID, false).
		Find(&tasks).Error
	return tasks, err
}

func (r *GormRepo) CompletedTasks(ctx context.Context, userID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND complete = ?", userID, true).
		Find(&tasks).Error
	return tasks, err
}

// CompleteTask flips the complete flag for the task bound to a job id.
// The job runner is the only writer of this flag.
func (r *GormRepo) CompleteTask(ctx context.Context, jobID string) error {
	return r.DB.WithContext(ctx).Model(&models.Task{}).
		Where("task_id = ?", jobID).
		Update("complete", true).Error
}
