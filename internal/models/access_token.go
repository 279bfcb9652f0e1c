package models

import "time"

// AccessToken is an issued bearer credential. Only the SHA-256 digest of the
// plaintext token is stored.
type AccessToken struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	UserID      uint64    `gorm:"not null;index" json:"user_id"`
	TokenDigest string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	ExpiresAt   time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}
