package repository

import (
	"context"
	"errors"

	"folio/internal/models"

	"gorm.io/gorm"
)

// WebsiteProjectRepository defines persistence operations for website
// projects. Update and Delete are scoped to the owning user; rows belonging
// to anyone else read as not found.
type WebsiteProjectRepository interface {
	ListByUserID(ctx context.Context, userID string) ([]models.WebsiteProject, error)
	GetByID(ctx context.Context, id string) (*models.WebsiteProject, error)
	Create(ctx context.Context, project *models.WebsiteProject) error
	Update(ctx context.Context, userID string, project *models.WebsiteProject) error
	Delete(ctx context.Context, userID, id string) error
}

type websiteProjectRepository struct {
	db *gorm.DB
}

// NewWebsiteProjectRepository returns a new WebsiteProjectRepository implementation.
func NewWebsiteProjectRepository(db *gorm.DB) WebsiteProjectRepository {
	return &websiteProjectRepository{db: db}
}

func (r *websiteProjectRepository) ListByUserID(ctx context.Context, userID string) ([]models.WebsiteProject, error) {
	projects := []models.WebsiteProject{}
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return projects, nil
}

func (r *websiteProjectRepository) GetByID(ctx context.Context, id string) (*models.WebsiteProject, error) {
	var project models.WebsiteProject
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Website project", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &project, nil
}

func (r *websiteProjectRepository) Create(ctx context.Context, project *models.WebsiteProject) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *websiteProjectRepository) Update(ctx context.Context, userID string, project *models.WebsiteProject) error {
	res := r.db.WithContext(ctx).Model(&models.WebsiteProject{}).
		Where("id = ? AND user_id = ?", project.ID, userID).
		Select("project_title", "project_description", "image_url", "project_url").
		Updates(project)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Website project", project.ID)
	}
	return nil
}

func (r *websiteProjectRepository) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.WebsiteProject{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Website project", id)
	}
	return nil
}
