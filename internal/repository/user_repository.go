package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/harukim/task-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrRoleNotFound is returned when the role to assign does not exist.
	ErrRoleNotFound = errors.New("user repository: role not found")
	// ErrCreateUser is returned when creating a user fails inside the registration transaction.
	ErrCreateUser = errors.New("user repository: create user failed")
	// ErrAssignRole is returned when the role assignment fails inside the registration transaction.
	ErrAssignRole = errors.New("user repository: assign role failed")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// CreateWithRole creates a user and assigns the named role atomically.
func (r *GormUserRepository) CreateWithRole(user *models.User, roleName string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.Where("name = ?", roleName).First(&role).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrRoleNotFound, err)
		}

		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateUser, err)
		}

		if err := tx.Model(user).Association("Roles").Append(&role); err != nil {
			return fmt.Errorf("%w: %v", ErrAssignRole, err)
		}

		return nil
	})
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDWithRoles finds a user with roles and permissions preloaded. Role
// and permission state is resolved per call, never cached across requests.
func (r *GormUserRepository) FindByIDWithRoles(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Roles.Permissions").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// AssignRole assigns a named role to a user
func (r *GormUserRepository) AssignRole(user *models.User, roleName string) error {
	var role models.Role
	if err := r.db.Where("name = ?", roleName).First(&role).Error; err != nil {
		return fmt.Errorf("failed to find role %s: %w", roleName, err)
	}

	if err := r.db.Model(user).Association("Roles").Append(&role); err != nil {
		return fmt.Errorf("failed to assign role %s: %w", roleName, err)
	}
	return nil
}

// UpdateLastLogin records a successful login
func (r *GormUserRepository) UpdateLastLogin(id uint64, at time.Time) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).
		Update("last_login_at", at).Error
}

// UpdatePassword replaces a user's password hash
func (r *GormUserRepository) UpdatePassword(id uint64, passwordHash string) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).
		Update("password_hash", passwordHash).Error
}

// ListAll lists every user with roles and permissions preloaded
func (r *GormUserRepository) ListAll() ([]models.User, error) {
	var users []models.User
	if err := r.db.Preload("Roles.Permissions").Order("users.id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
