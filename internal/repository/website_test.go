package repository

import (
	"context"
	"testing"
	"time"

	"folio/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebsiteProjectRepository_ListNewestFirst(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewWebsiteProjectRepository(db)
	ctx := context.Background()

	userID := uuid.NewString()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, title := range []string{"oldest", "middle", "newest"} {
		require.NoError(t, repo.Create(ctx, &models.WebsiteProject{
			UserID:       userID,
			ProjectTitle: title,
			CreatedAt:    base.Add(time.Duration(i) * time.Hour),
		}))
	}
	// Another user's project must not leak into the list.
	require.NoError(t, repo.Create(ctx, &models.WebsiteProject{
		UserID:       uuid.NewString(),
		ProjectTitle: "someone else",
	}))

	projects, err := repo.ListByUserID(ctx, userID)
	require.NoError(t, err)
	require.Len(t, projects, 3)
	assert.Equal(t, "newest", projects[0].ProjectTitle)
	assert.Equal(t, "middle", projects[1].ProjectTitle)
	assert.Equal(t, "oldest", projects[2].ProjectTitle)
}

func TestWebsiteProjectRepository_ListEmptyForUnknownUser(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewWebsiteProjectRepository(db)

	projects, err := repo.ListByUserID(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.NotNil(t, projects)
	assert.Empty(t, projects)
}

func TestWebsiteProjectRepository_UpdateAndDelete(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewWebsiteProjectRepository(db)
	ctx := context.Background()

	project := &models.WebsiteProject{
		UserID:       uuid.NewString(),
		ProjectTitle: "draft",
		ProjectURL:   "https://example.com",
	}
	require.NoError(t, repo.Create(ctx, project))

	project.ProjectTitle = "published"
	require.NoError(t, repo.Update(ctx, project.UserID, project))

	got, err := repo.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "published", got.ProjectTitle)

	require.NoError(t, repo.Delete(ctx, project.UserID, project.ID))

	_, err = repo.GetByID(ctx, project.ID)
	require.Error(t, err)
	appErr := models.AsAppError(err)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestWebsiteProjectRepository_WritesScopedToOwner(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewWebsiteProjectRepository(db)
	ctx := context.Background()

	owner := uuid.NewString()
	intruder := uuid.NewString()
	project := &models.WebsiteProject{
		UserID:       owner,
		ProjectTitle: "mine",
		ProjectURL:   "https://example.com",
	}
	require.NoError(t, repo.Create(ctx, project))

	t.Run("update by another user reads as not found", func(t *testing.T) {
		err := repo.Update(ctx, intruder, &models.WebsiteProject{
			ID:           project.ID,
			ProjectTitle: "hijacked",
		})
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", models.AsAppError(err).Code)

		got, err := repo.GetByID(ctx, project.ID)
		require.NoError(t, err)
		assert.Equal(t, "mine", got.ProjectTitle)
		assert.Equal(t, owner, got.UserID)
	})

	t.Run("update never creates a row for a fresh id", func(t *testing.T) {
		forged := uuid.NewString()
		err := repo.Update(ctx, intruder, &models.WebsiteProject{
			ID:           forged,
			ProjectTitle: "planted",
		})
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", models.AsAppError(err).Code)

		_, err = repo.GetByID(ctx, forged)
		require.Error(t, err)
	})

	t.Run("delete by another user reads as not found", func(t *testing.T) {
		err := repo.Delete(ctx, intruder, project.ID)
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", models.AsAppError(err).Code)

		got, err := repo.GetByID(ctx, project.ID)
		require.NoError(t, err)
		assert.Equal(t, owner, got.UserID)
	})
}

func TestVideoProjectRepository_CreateAndList(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewVideoProjectRepository(db)
	ctx := context.Background()

	userID := uuid.NewString()
	require.NoError(t, repo.Create(ctx, &models.VideoProject{
		UserID:       userID,
		ProjectTitle: "demo reel",
		VideoURL:     "https://videos.example.com/reel.mp4",
	}))

	videos, err := repo.ListByUserID(ctx, userID)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, "demo reel", videos[0].ProjectTitle)
	assert.NotEmpty(t, videos[0].ID)
}
