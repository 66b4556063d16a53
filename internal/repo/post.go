package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/rlammers/microblog-api/internal/models"
)

var ErrNotFound = errors.New("record not found")

func (r *GormRepo) CreatePost(ctx context.Context, p *models.Post) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.DB.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *GormRepo) PostsByUser(ctx context.Context, userID uint) ([]models.Post, error) {
	var posts []models.Post
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Find(&posts).Error
	return posts, err
}

func (r *GormRepo) DeletePost(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&models.Post{}, id).Error
}
