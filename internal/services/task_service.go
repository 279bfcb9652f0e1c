package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harukim/task-tracker-api/internal/authz"
	"github.com/harukim/task-tracker-api/internal/constants"
	"github.com/harukim/task-tracker-api/internal/models"
	"github.com/harukim/task-tracker-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrTitleRequired        = errors.New("title is required")
	ErrTitleTooLong         = errors.New("title must be at most 255 characters")
	ErrInvalidStatus        = errors.New("status must be pending, in-progress or completed")
	ErrInvalidSortColumn    = errors.New("sort_by must be one of title, status, due_date, created_at")
	ErrInvalidSortDirection = errors.New("sort_dir must be asc or desc")
	ErrInvalidDate          = errors.New("dates must be formatted as YYYY-MM-DD")
	ErrTagNameTooLong       = errors.New("tag names must be at most 50 characters")
)

const dateLayout = "2006-01-02"

// Relations loaded for every task returned to a client.
var taskProjectionPreloads = []string{"User.Roles.Permissions", "Tags"}

// TaskService handles task business logic
type TaskService struct {
	taskRepo repository.TaskRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
	}
}

// ListTasksInput represents the raw, untrusted filter parameters for listing
// tasks. Everything is optional.
type ListTasksInput struct {
	Search  string
	Tags    []string
	DueFrom string
	DueTo   string
	SortBy  string
	SortDir string
	Page    int
}

// ListTasks validates the filter parameters, applies the principal's
// visibility scope as a query-level filter, and returns one page of tasks
// plus the post-filter total.
func (s *TaskService) ListTasks(p *authz.Principal, input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		Search: strings.TrimSpace(input.Search),
		Page:   input.Page,
	}

	if authz.TaskScope(p) == authz.ScopeOwn {
		ownerID := p.ID()
		filter.OwnerID = &ownerID
	}

	for _, tag := range input.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			filter.TagNames = append(filter.TagNames, tag)
		}
	}

	if input.DueFrom != "" {
		from, err := time.Parse(dateLayout, input.DueFrom)
		if err != nil {
			return nil, 0, ErrInvalidDate
		}
		filter.DueFrom = &from
	}
	if input.DueTo != "" {
		to, err := time.Parse(dateLayout, input.DueTo)
		if err != nil {
			return nil, 0, ErrInvalidDate
		}
		// Date-only upper bound: anything due before the following midnight.
		end := to.AddDate(0, 0, 1)
		filter.DueTo = &end
	}

	switch input.SortBy {
	case "":
		filter.SortBy = "created_at"
	default:
		if !repository.AllowedSortColumn(input.SortBy) {
			return nil, 0, ErrInvalidSortColumn
		}
		filter.SortBy = input.SortBy
	}

	switch input.SortDir {
	case "", "desc":
		filter.SortDesc = true
	case "asc":
		filter.SortDesc = false
	default:
		return nil, 0, ErrInvalidSortDirection
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
	DueDate     string
	Tags        []string
}

// CreateTask creates a task owned by the principal, with its tags, as a
// single atomic step.
func (s *TaskService) CreateTask(p *authz.Principal, input CreateTaskInput) (*models.Task, error) {
	if d := authz.Decide(p, authz.ActionCreateTask, nil); !d.Allowed {
		return nil, ErrPermissionDenied
	}

	task := &models.Task{
		UserID: p.ID(),
		Status: models.TaskStatusPending,
	}

	if err := applyTitle(task, input.Title); err != nil {
		return nil, err
	}
	task.Description = input.Description

	if input.Status != "" {
		status := models.TaskStatus(input.Status)
		if !models.ValidTaskStatus(status) {
			return nil, ErrInvalidStatus
		}
		task.Status = status
	}

	if input.DueDate != "" {
		due, err := time.Parse(dateLayout, input.DueDate)
		if err != nil {
			return nil, ErrInvalidDate
		}
		task.DueDate = &due
	}

	tags, err := buildTags(input.Tags)
	if err != nil {
		return nil, err
	}
	task.Tags = tags

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.reload(task.ID)
}

// GetTask returns a task if the principal may view it. Existence is checked
// first: a missing id is NotFound for everyone.
func (s *TaskService) GetTask(p *authz.Principal, taskID uint64) (*models.Task, error) {
	task, err := s.find(taskID)
	if err != nil {
		return nil, err
	}

	if d := authz.Decide(p, authz.ActionViewOwnTask, &task.UserID); !d.Allowed {
		return nil, ErrPermissionDenied
	}

	return task, nil
}

// UpdateTaskInput represents a partial update. Nil fields are left unchanged;
// a non-nil Tags slice replaces the task's entire tag set. An empty DueDate
// string clears the due date.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	DueDate     *string
	Tags        *[]string
}

// UpdateTask applies a partial update to a task the principal may modify.
// Field updates and tag replacement happen as one atomic unit.
func (s *TaskService) UpdateTask(p *authz.Principal, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.find(taskID)
	if err != nil {
		return nil, err
	}

	if d := authz.Decide(p, authz.ActionUpdateOwnTask, &task.UserID); !d.Allowed {
		return nil, ErrPermissionDenied
	}

	// Detach loaded relations so Save only touches the task's own columns.
	task.Tags = nil
	task.User = models.User{}

	if input.Title != nil {
		if err := applyTitle(task, *input.Title); err != nil {
			return nil, err
		}
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		status := models.TaskStatus(*input.Status)
		if !models.ValidTaskStatus(status) {
			return nil, ErrInvalidStatus
		}
		task.Status = status
	}
	if input.DueDate != nil {
		if *input.DueDate == "" {
			task.DueDate = nil
		} else {
			due, err := time.Parse(dateLayout, *input.DueDate)
			if err != nil {
				return nil, ErrInvalidDate
			}
			task.DueDate = &due
		}
	}

	if input.Tags != nil {
		tags, err := buildTags(*input.Tags)
		if err != nil {
			return nil, err
		}
		if err := s.taskRepo.UpdateWithTagReplacement(task, tags); err != nil {
			return nil, fmt.Errorf("failed to update task: %w", err)
		}
	} else {
		if err := s.taskRepo.Update(task); err != nil {
			return nil, fmt.Errorf("failed to update task: %w", err)
		}
	}

	return s.reload(task.ID)
}

// DeleteTask deletes a task (and its tags) the principal may delete.
func (s *TaskService) DeleteTask(p *authz.Principal, taskID uint64) error {
	task, err := s.find(taskID)
	if err != nil {
		return err
	}

	if d := authz.Decide(p, authz.ActionDeleteOwnTask, &task.UserID); !d.Allowed {
		return ErrPermissionDenied
	}

	if err := s.taskRepo.Delete(task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

func (s *TaskService) find(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, taskProjectionPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *TaskService) reload(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, taskProjectionPreloads...)
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}
	return task, nil
}

func applyTitle(task *models.Task, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrTitleRequired
	}
	if len(title) > constants.MaxTitleLength {
		return ErrTitleTooLong
	}
	task.Title = title
	return nil
}

// buildTags validates and deduplicates tag names, preserving first-seen order.
func buildTags(names []string) ([]models.Tag, error) {
	seen := make(map[string]struct{}, len(names))
	tags := make([]models.Tag, 0, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if len(name) > constants.MaxTagNameLength {
			return nil, ErrTagNameTooLong
		}
		if _, exists := seen[name]; exists {
			continue
		}
		seen[name] = struct{}{}
		tags = append(tags, models.Tag{Name: name})
	}

	return tags, nil
}
