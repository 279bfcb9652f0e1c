package models

import "time"

// Role names seeded at startup.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type Role struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Permissions []Permission `gorm:"many2many:role_permissions" json:"permissions,omitempty"`
}
