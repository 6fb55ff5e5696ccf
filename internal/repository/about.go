package repository

import (
	"context"
	"errors"

	"folio/internal/models"

	"gorm.io/gorm"
)

// AboutInfoRepository defines persistence operations for the about section.
type AboutInfoRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.AboutInfo, error)
	Create(ctx context.Context, info *models.AboutInfo) error
	Update(ctx context.Context, info *models.AboutInfo) error
}

type aboutInfoRepository struct {
	db *gorm.DB
}

// NewAboutInfoRepository returns a new AboutInfoRepository implementation.
func NewAboutInfoRepository(db *gorm.DB) AboutInfoRepository {
	return &aboutInfoRepository{db: db}
}

func (r *aboutInfoRepository) GetByUserID(ctx context.Context, userID string) (*models.AboutInfo, error) {
	var info models.AboutInfo
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&info).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &info, nil
}

func (r *aboutInfoRepository) Create(ctx context.Context, info *models.AboutInfo) error {
	if err := r.db.WithContext(ctx).Create(info).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *aboutInfoRepository) Update(ctx context.Context, info *models.AboutInfo) error {
	res := r.db.WithContext(ctx).Model(&models.AboutInfo{}).
		Where("id = ? AND user_id = ?", info.ID, info.UserID).
		Select("about_text", "resume_url").
		Updates(info)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("About info", info.ID)
	}
	return nil
}
