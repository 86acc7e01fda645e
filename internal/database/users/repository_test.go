package users

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/readtrack/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "users.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return NewRepository(db)
}

func TestRepository_Create(t *testing.T) {
	repo := setupTestDB(t)

	user, err := repo.Create("reader", "reader@example.com")

	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "reader", user.Username)
	assert.Len(t, user.Token, 64)
}

func TestRepository_GetByToken(t *testing.T) {
	repo := setupTestDB(t)

	created, err := repo.Create("reader", "")
	require.NoError(t, err)

	user, err := repo.GetByToken(created.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = repo.GetByToken("nonexistent-token")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.GetByToken("")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.GetByID(999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_EnsureDefaultUser_Idempotent(t *testing.T) {
	repo := setupTestDB(t)

	first, err := repo.EnsureDefaultUser()
	require.NoError(t, err)
	assert.Equal(t, DefaultUsername, first.Username)

	second, err := repo.EnsureDefaultUser()
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Token, second.Token)
}

func TestRepository_RotateToken(t *testing.T) {
	repo := setupTestDB(t)

	user, err := repo.Create("reader", "")
	require.NoError(t, err)

	token, err := repo.RotateToken(user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, user.Token, token)

	_, err = repo.GetByToken(user.Token)
	assert.Error(t, err)

	found, err := repo.GetByToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.RotateToken(999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
