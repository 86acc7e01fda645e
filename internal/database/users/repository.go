// Package users stores reading-tracker accounts and their API tokens.
//
// Tokens authenticate API and CLI callers; in single-user deployments
// EnsureDefaultUser provisions the local account on startup.
package users

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/readtrack/internal/entities"
)

// DefaultUsername is the account used when authentication is disabled.
const DefaultUsername = "local"

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create creates a new user with a generated API token.
func (r *Repository) Create(username, email string) (*entities.User, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	user := &entities.User{
		Username: username,
		Email:    email,
		Token:    token,
	}
	if err := r.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// EnsureDefaultUser returns the local account, creating it on first use.
func (r *Repository) EnsureDefaultUser() (*entities.User, error) {
	user, err := r.GetByUsername(DefaultUsername)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return r.Create(DefaultUsername, "")
}

func (r *Repository) GetByToken(token string) (*entities.User, error) {
	if token == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var user entities.User
	if err := r.db.Where("token = ?", token).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetByID(id uint) (*entities.User, error) {
	var user entities.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetByUsername(username string) (*entities.User, error) {
	var user entities.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// RotateToken replaces the user's API token and returns the new one.
func (r *Repository) RotateToken(id uint) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	res := r.db.Model(&entities.User{}).Where("id = ?", id).Update("token", token)
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return "", gorm.ErrRecordNotFound
	}
	return token, nil
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
