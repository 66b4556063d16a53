package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/rlammers/microblog-api/internal/models"
)

func (r *GormRepo) CreateComment(ctx context.Context, c *models.Comment) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *GormRepo) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.DB.WithContext(ctx).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &comment, nil
}

func (r *GormRepo) CommentsByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.DB.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("timestamp ASC").
		Find(&comments).Error
	return comments, err
}

func (r *GormRepo) DeleteComment(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&models.Comment{}, id).Error
}
