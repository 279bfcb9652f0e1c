package dto

import (
	"time"

	"github.com/harukim/task-tracker-api/internal/constants"
	"github.com/harukim/task-tracker-api/internal/models"
)

// TagDTO represents a tag in API responses
type TagDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
	DueDate     *time.Time        `json:"due_date"`
	CreatedAt   time.Time         `json:"created_at"`
	User        UserDTO           `json:"user"`
	Tags        []TagDTO          `json:"tags"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Data        []TaskDTO `json:"data"`
	CurrentPage int       `json:"current_page"`
	Total       int64     `json:"total"`
	PerPage     int       `json:"per_page"`
	LastPage    int       `json:"last_page"`
}

// ToTaskDTO converts a Task model (with User.Roles.Permissions and Tags
// preloaded) to a TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	tags := make([]TagDTO, len(task.Tags))
	for i, tag := range task.Tags {
		tags[i] = TagDTO{
			ID:   tag.ID,
			Name: tag.Name,
		}
	}

	return TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		User:        ToUserDTO(task.User),
		Tags:        tags,
	}
}

// ToTaskListResponse converts a page of tasks to a TaskListResponse
func ToTaskListResponse(tasks []models.Task, page int, total int64) TaskListResponse {
	data := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		data[i] = ToTaskDTO(task)
	}

	lastPage := int(total) / constants.TasksPerPage
	if int(total)%constants.TasksPerPage > 0 {
		lastPage++
	}
	if lastPage < 1 {
		lastPage = 1
	}

	return TaskListResponse{
		Data:        data,
		CurrentPage: page,
		Total:       total,
		PerPage:     constants.TasksPerPage,
		LastPage:    lastPage,
	}
}
