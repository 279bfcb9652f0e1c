package repository

import (
	"time"

	"github.com/harukim/task-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormTokenRepository is a GORM implementation of TokenRepository
type GormTokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &GormTokenRepository{db: db}
}

// Create persists a newly issued token
func (r *GormTokenRepository) Create(token *models.AccessToken) error {
	return r.db.Create(token).Error
}

// FindByDigest finds a token by its digest
func (r *GormTokenRepository) FindByDigest(digest string) (*models.AccessToken, error) {
	var token models.AccessToken
	if err := r.db.Where("token_digest = ?", digest).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// DeleteByDigest revokes a token
func (r *GormTokenRepository) DeleteByDigest(digest string) error {
	return r.db.Where("token_digest = ?", digest).Delete(&models.AccessToken{}).Error
}

// DeleteExpired removes tokens that expired before now
func (r *GormTokenRepository) DeleteExpired(now time.Time) (int64, error) {
	result := r.db.Where("expires_at < ?", now).Delete(&models.AccessToken{})
	return result.RowsAffected, result.Error
}
