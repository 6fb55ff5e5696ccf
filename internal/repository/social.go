package repository

import (
	"context"
	"errors"

	"folio/internal/models"

	"gorm.io/gorm"
)

// SocialMediaRepository defines persistence operations for outbound links.
type SocialMediaRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.SocialMedia, error)
	Create(ctx context.Context, links *models.SocialMedia) error
	Update(ctx context.Context, links *models.SocialMedia) error
}

type socialMediaRepository struct {
	db *gorm.DB
}

// NewSocialMediaRepository returns a new SocialMediaRepository implementation.
func NewSocialMediaRepository(db *gorm.DB) SocialMediaRepository {
	return &socialMediaRepository{db: db}
}

func (r *socialMediaRepository) GetByUserID(ctx context.Context, userID string) (*models.SocialMedia, error) {
	var links models.SocialMedia
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&links).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &links, nil
}

func (r *socialMediaRepository) Create(ctx context.Context, links *models.SocialMedia) error {
	if err := r.db.WithContext(ctx).Create(links).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *socialMediaRepository) Update(ctx context.Context, links *models.SocialMedia) error {
	res := r.db.WithContext(ctx).Model(&models.SocialMedia{}).
		Where("id = ? AND user_id = ?", links.ID, links.UserID).
		Select("github_url", "linkedin_url", "twitter_url", "instagram_url", "email_url").
		Updates(links)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Social media", links.ID)
	}
	return nil
}
