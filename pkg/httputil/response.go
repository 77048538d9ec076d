package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/dental-admin/pkg/errors"
)

// ToastType is the visual variant of a UI notification
type ToastType string

const (
	ToastSuccess ToastType = "success"
	ToastError   ToastType = "error"
	ToastWarning ToastType = "warning"
	ToastInfo    ToastType = "info"
)

// Toast is a user-facing notification rendered by the UI
type Toast struct {
	Type        ToastType `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
}

// Response wraps all API responses
type Response struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Toast   *Toast            `json:"toast,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Pagination represents pagination metadata
type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"page_size"`
	Total     int `json:"total"`
	TotalPage int `json:"total_pages"`
}

// PaginatedResponse wraps paginated data
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

func Success(data interface{}) Response {
	return Response{Status: "success", Data: data}
}

func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Success(data))
}

func RespondCreated(c *gin.Context, data interface{}, toast *Toast) {
	c.JSON(http.StatusCreated, Response{Status: "success", Data: data, Toast: toast})
}

func RespondWithToast(c *gin.Context, data interface{}, toast *Toast) {
	c.JSON(http.StatusOK, Response{Status: "success", Data: data, Toast: toast})
}

// RespondWithError renders err through the uniform error envelope.
// Non-AppError values become a generic 500.
func RespondWithError(c *gin.Context, err error) {
	RespondWithErrorToast(c, err, nil)
}

// RespondWithErrorToast renders err with a caller-provided toast; a nil toast
// falls back to an error toast titled with the error message.
func RespondWithErrorToast(c *gin.Context, err error, toast *Toast) {
	status := http.StatusInternalServerError
	message := "Internal server error"
	var fields map[string]string

	if appErr, ok := errors.As(err); ok {
		status = appErr.StatusCode()
		message = appErr.Message
		fields = appErr.Fields
	}

	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("path", c.Request.URL.Path).
			Str("request_id", c.GetString("request_id")).
			Msg("request failed")
	}

	if toast == nil {
		toast = &Toast{Type: ToastError, Title: message}
	}

	c.AbortWithStatusJSON(status, Response{
		Status:  "error",
		Message: message,
		Errors:  fields,
		Toast:   toast,
	})
}

func RespondWithPagination(c *gin.Context, data interface{}, page, pageSize, total int) {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	c.JSON(http.StatusOK, Success(PaginatedResponse{
		Data: data,
		Pagination: Pagination{
			Page:      page,
			PageSize:  pageSize,
			Total:     total,
			TotalPage: totalPages,
		},
	}))
}
