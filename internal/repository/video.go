package repository

import (
	"context"
	"errors"

	"folio/internal/models"

	"gorm.io/gorm"
)

// VideoProjectRepository defines persistence operations for video projects.
// Update and Delete are scoped to the owning user.
type VideoProjectRepository interface {
	ListByUserID(ctx context.Context, userID string) ([]models.VideoProject, error)
	GetByID(ctx context.Context, id string) (*models.VideoProject, error)
	Create(ctx context.Context, project *models.VideoProject) error
	Update(ctx context.Context, userID string, project *models.VideoProject) error
	Delete(ctx context.Context, userID, id string) error
}

type videoProjectRepository struct {
	db *gorm.DB
}

// NewVideoProjectRepository returns a new VideoProjectRepository implementation.
func NewVideoProjectRepository(db *gorm.DB) VideoProjectRepository {
	return &videoProjectRepository{db: db}
}

func (r *videoProjectRepository) ListByUserID(ctx context.Context, userID string) ([]models.VideoProject, error) {
	projects := []models.VideoProject{}
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return projects, nil
}

func (r *videoProjectRepository) GetByID(ctx context.Context, id string) (*models.VideoProject, error) {
	var project models.VideoProject
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Video project", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &project, nil
}

func (r *videoProjectRepository) Create(ctx context.Context, project *models.VideoProject) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *videoProjectRepository) Update(ctx context.Context, userID string, project *models.VideoProject) error {
	res := r.db.WithContext(ctx).Model(&models.VideoProject{}).
		Where("id = ? AND user_id = ?", project.ID, userID).
		Select("project_title", "project_description", "thumbnail_url", "video_url").
		Updates(project)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Video project", project.ID)
	}
	return nil
}

func (r *videoProjectRepository) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.VideoProject{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Video project", id)
	}
	return nil
}
