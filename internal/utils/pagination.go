package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/harukim/task-tracker-api/internal/constants"
)

// PaginationParams holds the pagination parameters. The page size is fixed at
// constants.TasksPerPage; only the page number is caller-controlled.
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// GetPaginationParams extracts and validates the page parameter from the request
func GetPaginationParams(c *gin.Context) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(constants.MinPage)))
	if page < constants.MinPage {
		page = constants.MinPage
	}

	limit := constants.TasksPerPage
	offset := (page - 1) * limit

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: offset,
	}
}
