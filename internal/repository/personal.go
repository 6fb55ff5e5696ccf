package repository

import (
	"context"
	"errors"

	"folio/internal/cache"
	"folio/internal/models"

	"gorm.io/gorm"
)

// PersonalInfoRepository defines persistence operations for the identity card.
// A user without a row is an ordinary state, reported as (nil, nil).
type PersonalInfoRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.PersonalInfo, error)
	GetByUsername(ctx context.Context, username string) (*models.PersonalInfo, error)
	Search(ctx context.Context, query string, limit int) ([]models.PersonalInfo, error)
	Create(ctx context.Context, info *models.PersonalInfo) error
	Update(ctx context.Context, info *models.PersonalInfo) error
}

type personalInfoRepository struct {
	db *gorm.DB
}

// NewPersonalInfoRepository returns a new PersonalInfoRepository implementation.
func NewPersonalInfoRepository(db *gorm.DB) PersonalInfoRepository {
	return &personalInfoRepository{db: db}
}

func (r *personalInfoRepository) GetByUserID(ctx context.Context, userID string) (*models.PersonalInfo, error) {
	var info models.PersonalInfo
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&info).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &info, nil
}

func (r *personalInfoRepository) GetByUsername(ctx context.Context, username string) (*models.PersonalInfo, error) {
	var info models.PersonalInfo
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&info).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &info, nil
}

func (r *personalInfoRepository) Search(ctx context.Context, query string, limit int) ([]models.PersonalInfo, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}
	var infos []models.PersonalInfo
	pattern := "%" + query + "%"
	if err := r.db.WithContext(ctx).
		Where("username LIKE ? OR name LIKE ?", pattern, pattern).
		Order("username ASC").
		Limit(limit).
		Find(&infos).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return infos, nil
}

func (r *personalInfoRepository) Create(ctx context.Context, info *models.PersonalInfo) error {
	if err := r.db.WithContext(ctx).Create(info).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Username is already taken")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateUsername(ctx, info.Username)
	return nil
}

func (r *personalInfoRepository) Update(ctx context.Context, info *models.PersonalInfo) error {
	res := r.db.WithContext(ctx).Model(&models.PersonalInfo{}).
		Where("id = ? AND user_id = ?", info.ID, info.UserID).
		Select("username", "name", "professional_title", "short_description", "profile_image_url").
		Updates(info)
	if res.Error != nil {
		if isUniqueConstraintError(res.Error) {
			return models.NewValidationError("Username is already taken")
		}
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Personal info", info.ID)
	}
	cache.InvalidateUsername(ctx, info.Username)
	return nil
}
