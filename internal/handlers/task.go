package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/harukim/task-tracker-api/internal/authz"
	"github.com/harukim/task-tracker-api/internal/dto"
	apierrors "github.com/harukim/task-tracker-api/internal/errors"
	"github.com/harukim/task-tracker-api/internal/middleware"
	"github.com/harukim/task-tracker-api/internal/services"
	"github.com/harukim/task-tracker-api/internal/utils"
)

// TaskHandler coordinates task-related HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns one page of tasks visible to the principal, filtered and
// sorted by the query parameters.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	input := services.ListTasksInput{
		Search:  c.Query("search"),
		DueFrom: c.Query("due_from"),
		DueTo:   c.Query("due_to"),
		SortBy:  c.Query("sort_by"),
		SortDir: c.Query("sort_dir"),
		Page:    params.Page,
	}
	if tags := c.Query("tags"); tags != "" {
		input.Tags = strings.Split(tags, ",")
	}

	tasks, total, err := h.taskService.ListTasks(principal, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params.Page, total))
}

// CreateTask creates a new task owned by the principal.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		Title       string   `json:"title" binding:"required"`
		Description string   `json:"description"`
		Status      string   `json:"status"`
		DueDate     string   `json:"due_date"`
		Tags        []string `json:"tags"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.UnprocessableEntity(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(principal, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// GetTask returns a single task.
func (h *TaskHandler) GetTask(c *gin.Context) {
	principal, taskID, ok := taskRequest(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(principal, taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update to a task. A tags field, when present,
// replaces the task's entire tag set.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	principal, taskID, ok := taskRequest(c)
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Title       *string   `json:"title"`
		Description *string   `json:"description"`
		Status      *string   `json:"status"`
		DueDate     *string   `json:"due_date"`
		Tags        *[]string `json:"tags"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.UnprocessableEntity(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateTask(principal, taskID, services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task and its tags.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	principal, taskID, ok := taskRequest(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(principal, taskID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// taskRequest extracts the principal and the task id path parameter.
func taskRequest(c *gin.Context) (*authz.Principal, uint64, bool) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return nil, 0, false
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return nil, 0, false
	}

	return principal, taskID, true
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrPermissionDenied):
		apierrors.Forbidden(c, "")
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleTooLong),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidSortColumn),
		errors.Is(err, services.ErrInvalidSortDirection),
		errors.Is(err, services.ErrInvalidDate),
		errors.Is(err, services.ErrTagNameTooLong):
		apierrors.UnprocessableEntity(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
