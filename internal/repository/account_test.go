package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"folio/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return gormDB, mock
}

func TestAccountRepository_CreateAndGet(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	account := &models.Account{Email: "alice@example.com", Password: "hashed"}
	require.NoError(t, repo.Create(ctx, account))
	require.NotEmpty(t, account.ID)

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, account.ID, byEmail.ID)

	byID, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)
}

func TestAccountRepository_GetByEmailAbsent(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewAccountRepository(db)

	account, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	assert.NoError(t, err)
	assert.Nil(t, account)
}

func TestAccountRepository_DuplicateEmail(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Account{Email: "dup@example.com", Password: "x"}))

	err := repo.Create(ctx, &models.Account{Email: "dup@example.com", Password: "y"})
	require.Error(t, err)
	appErr := models.AsAppError(err)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Equal(t, "User already registered", appErr.Message)
}

func TestAccountRepository_GetByEmail_DatabaseError(t *testing.T) {
	t.Parallel()
	db, mock := setupMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "accounts" WHERE email = $1`)).
		WithArgs("alice@example.com", 1).
		WillReturnError(errors.New("connection timeout"))

	account, err := repo.GetByEmail(context.Background(), "alice@example.com")
	require.Error(t, err)
	assert.Nil(t, account)
	appErr := models.AsAppError(err)
	assert.Equal(t, "INTERNAL_ERROR", appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
