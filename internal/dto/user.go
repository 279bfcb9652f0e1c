package dto

import (
	"github.com/harukim/task-tracker-api/internal/authz"
	"github.com/harukim/task-tracker-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          uint64   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// AuthResponse wraps a freshly issued credential with its user
type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// ToUserDTO converts a User model (with Roles.Permissions preloaded) to a
// UserDTO. Every endpoint that returns a user goes through this projection.
func ToUserDTO(user models.User) UserDTO {
	p := authz.NewPrincipal(&user)
	return UserDTO{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Roles:       p.RoleNames(),
		Permissions: p.PermissionNames(),
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i, user := range users {
		dtos[i] = ToUserDTO(user)
	}
	return dtos
}
