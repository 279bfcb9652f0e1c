package repository

import (
	"time"

	"github.com/harukim/task-tracker-api/internal/models"
)

// Task sort columns exposed to clients. Anything else must be rejected before
// it reaches the repository; raw column names are never passed through.
var sortColumns = map[string]struct{}{
	"title":      {},
	"status":     {},
	"due_date":   {},
	"created_at": {},
}

// AllowedSortColumn reports whether name may be used in ORDER BY.
func AllowedSortColumn(name string) bool {
	_, ok := sortColumns[name]
	return ok
}

// TaskFilter holds the visibility scope and filtering options for listing
// tasks. SortBy must already have passed AllowedSortColumn.
type TaskFilter struct {
	OwnerID  *uint64 // nil means all tasks are visible
	Search   string
	TagNames []string
	DueFrom  *time.Time // inclusive
	DueTo    *time.Time // exclusive
	SortBy   string
	SortDesc bool
	Page     int
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a task together with its tags atomically
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves a deterministic, ordered page of tasks plus the
	// post-filter total count
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task's own columns
	Update(task *models.Task) error

	// UpdateWithTagReplacement updates a task and replaces its entire tag
	// set (delete-all-then-insert-all) in one transaction
	UpdateWithTagReplacement(task *models.Task, tags []models.Tag) error

	// Delete soft deletes a task and cascades to its tags
	Delete(id uint64) error
}

// UserRepository defines the interface for user and role data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// CreateWithRole creates a user and assigns the named role within a
	// single transaction
	CreateWithRole(user *models.User, roleName string) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByIDWithRoles finds a user with roles and permissions preloaded
	FindByIDWithRoles(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// AssignRole assigns a named role to a user
	AssignRole(user *models.User, roleName string) error

	// UpdateLastLogin records a successful login
	UpdateLastLogin(id uint64, at time.Time) error

	// UpdatePassword replaces a user's password hash
	UpdatePassword(id uint64, passwordHash string) error

	// ListAll lists every user with roles and permissions preloaded
	ListAll() ([]models.User, error)
}

// TokenRepository defines the interface for access token data access
type TokenRepository interface {
	// Create persists a newly issued token
	Create(token *models.AccessToken) error

	// FindByDigest finds a token by its digest
	FindByDigest(digest string) (*models.AccessToken, error)

	// DeleteByDigest revokes a token
	DeleteByDigest(digest string) error

	// DeleteExpired removes tokens that expired before now, returning the
	// number of rows removed
	DeleteExpired(now time.Time) (int64, error)
}
