package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harukim/task-tracker-api/internal/dto"
	apierrors "github.com/harukim/task-tracker-api/internal/errors"
	"github.com/harukim/task-tracker-api/internal/middleware"
	"github.com/harukim/task-tracker-api/internal/services"
)

// UserHandler coordinates administrative user HTTP handlers.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers returns every user with roles and permissions. Admin only.
func (h *UserHandler) ListUsers(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	users, err := h.userService.ListUsers(principal)
	if err != nil {
		if errors.Is(err, services.ErrPermissionDenied) {
			apierrors.Forbidden(c, "")
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTOs(users))
}
