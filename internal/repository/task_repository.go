package repository

import (
	"fmt"
	"strings"

	"github.com/harukim/task-tracker-api/internal/constants"
	"github.com/harukim/task-tracker-api/internal/database"
	"github.com/harukim/task-tracker-api/internal/models"
	"github.com/harukim/task-tracker-api/internal/utils"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a task together with its tags atomically
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves a deterministic, ordered page of tasks plus the post-filter
// total count. The page size is fixed at constants.TasksPerPage.
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{})

	if filter.OwnerID != nil {
		query = query.Where("tasks.user_id = ?", *filter.OwnerID)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(tasks.title) LIKE ? OR LOWER(tasks.description) LIKE ? OR LOWER(tasks.status) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if len(filter.TagNames) > 0 {
		tagSubQuery := r.db.Model(&models.Tag{}).
			Select("1").
			Where("tags.task_id = tasks.id").
			Where("tags.name IN ?", filter.TagNames).
			Where("tags.deleted_at IS NULL")
		query = query.Where("EXISTS (?)", tagSubQuery)
	}
	if filter.DueFrom != nil {
		query = query.Where("tasks.due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("tasks.due_date < ?", *filter.DueTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	page := filter.Page
	if page < constants.MinPage {
		page = constants.MinPage
	}
	params := utils.PaginationParams{
		Page:   page,
		Limit:  constants.TasksPerPage,
		Offset: (page - 1) * constants.TasksPerPage,
	}

	// Ties broken by id for reproducible pagination.
	err := query.
		Order(fmt.Sprintf("tasks.%s %s", sortBy, direction)).
		Order("tasks.id ASC").
		Scopes(database.Paginate(params)).
		Preload("User.Roles.Permissions").
		Preload("Tags").
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task's own columns
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// UpdateWithTagReplacement updates a task and replaces its entire tag set in
// one transaction. Existing tags are deleted wholesale, not merged.
func (r *GormTaskRepository) UpdateWithTagReplacement(task *models.Task, tags []models.Tag) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(task).Error; err != nil {
			return err
		}

		if err := tx.Where("task_id = ?", task.ID).Delete(&models.Tag{}).Error; err != nil {
			return err
		}

		if len(tags) == 0 {
			return nil
		}

		for i := range tags {
			tags[i].TaskID = task.ID
		}
		return tx.Create(&tags).Error
	})
}

// Delete soft deletes a task and cascades to its tags
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.Tag{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}
