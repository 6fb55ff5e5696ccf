package seed

import (
	"testing"

	"folio/internal/database"
	"folio/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestSeedCreatesFullPortfolios(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, Seed(db, Options{NumUsers: 3}))

	var accounts []models.Account
	require.NoError(t, db.Find(&accounts).Error)
	require.Len(t, accounts, 3)

	var infos []models.PersonalInfo
	require.NoError(t, db.Find(&infos).Error)
	require.Len(t, infos, 3)

	for _, info := range infos {
		assert.NotEmpty(t, info.Username)
		assert.NotEmpty(t, info.Name)
		assert.NotEmpty(t, info.UserID)
	}

	// Every account gets at least one website project and two blog posts.
	for _, account := range accounts {
		var projects int64
		require.NoError(t, db.Model(&models.WebsiteProject{}).
			Where("user_id = ?", account.ID).Count(&projects).Error)
		assert.GreaterOrEqual(t, projects, int64(1))

		var posts int64
		require.NoError(t, db.Model(&models.BlogPost{}).
			Where("user_id = ?", account.ID).Count(&posts).Error)
		assert.GreaterOrEqual(t, posts, int64(2))
	}
}

func TestSeedPasswordsVerify(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, Seed(db, Options{NumUsers: 1}))

	var account models.Account
	require.NoError(t, db.First(&account).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(DemoPassword)))
}

func TestSeedCleanRemovesPreviousRows(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, Seed(db, Options{NumUsers: 2}))
	require.NoError(t, Seed(db, Options{NumUsers: 1, ShouldClean: true}))

	var count int64
	require.NoError(t, db.Model(&models.Account{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
