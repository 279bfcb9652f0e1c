package services

import (
	"fmt"

	"github.com/harukim/task-tracker-api/internal/authz"
	"github.com/harukim/task-tracker-api/internal/models"
	"github.com/harukim/task-tracker-api/internal/repository"
)

// UserService handles administrative user operations.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// ListUsers returns every user with roles and permissions. Requires the
// view-any-user permission.
func (s *UserService) ListUsers(p *authz.Principal) ([]models.User, error) {
	if d := authz.Decide(p, authz.ActionViewAnyUser, nil); !d.Allowed {
		return nil, ErrPermissionDenied
	}

	users, err := s.userRepo.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}
