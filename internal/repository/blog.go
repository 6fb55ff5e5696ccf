package repository

import (
	"context"
	"errors"

	"folio/internal/models"

	"gorm.io/gorm"
)

// BlogPostRepository defines persistence operations for blog posts. Update
// and Delete are scoped to the owning user.
type BlogPostRepository interface {
	ListByUserID(ctx context.Context, userID string) ([]models.BlogPost, error)
	GetByID(ctx context.Context, id string) (*models.BlogPost, error)
	Create(ctx context.Context, post *models.BlogPost) error
	Update(ctx context.Context, userID string, post *models.BlogPost) error
	Delete(ctx context.Context, userID, id string) error
}

type blogPostRepository struct {
	db *gorm.DB
}

// NewBlogPostRepository returns a new BlogPostRepository implementation.
func NewBlogPostRepository(db *gorm.DB) BlogPostRepository {
	return &blogPostRepository{db: db}
}

func (r *blogPostRepository) ListByUserID(ctx context.Context, userID string) ([]models.BlogPost, error) {
	posts := []models.BlogPost{}
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("creation_date DESC").
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *blogPostRepository) GetByID(ctx context.Context, id string) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Blog post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *blogPostRepository) Create(ctx context.Context, post *models.BlogPost) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *blogPostRepository) Update(ctx context.Context, userID string, post *models.BlogPost) error {
	res := r.db.WithContext(ctx).Model(&models.BlogPost{}).
		Where("id = ? AND user_id = ?", post.ID, userID).
		Select("blog_title", "creation_date", "blog_content").
		Updates(post)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Blog post", post.ID)
	}
	return nil
}

func (r *blogPostRepository) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.BlogPost{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Blog post", id)
	}
	return nil
}
