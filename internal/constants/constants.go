package constants

// Context keys
const (
	ContextKeyPrincipal = "principal"
)

// Validation limits
const (
	MinPasswordLength = 8
	MaxTitleLength    = 255
	MaxTagNameLength  = 50
)

// Pagination
const (
	TasksPerPage = 15
	MinPage      = 1
)

// Rate limiting
const (
	LoginAttemptsPerMinute = 5
	APIRequestsPerMinute   = 60
)
