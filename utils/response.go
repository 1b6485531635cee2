// File: /utils/response.go
package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"inkwell-api/store"
)

type ErrorResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message,omitempty"`
	Code    int          `json:"code,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SendError(c *gin.Context, status int, err string) {
	c.JSON(status, ErrorResponse{
		Error: err,
		Code:  status,
	})
}

// SendOperationError maps a state-layer failure to an HTTP response:
// validation errors arrive field-scoped, store errors by class, everything
// else as a 500 with the raw message as a last resort.
func SendOperationError(c *gin.Context, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:  "Validation failed",
			Code:   http.StatusBadRequest,
			Fields: verr.Fields,
		})
		return
	}

	status := http.StatusInternalServerError
	switch store.CodeOf(err) {
	case store.InvalidArgument:
		status = http.StatusBadRequest
	case store.Unauthenticated:
		status = http.StatusUnauthorized
	case store.PermissionDenied:
		status = http.StatusForbidden
	case store.NotFound:
		status = http.StatusNotFound
	case store.AlreadyExists:
		status = http.StatusConflict
	case store.ResourceExhausted:
		status = http.StatusTooManyRequests
	case store.Unavailable:
		status = http.StatusServiceUnavailable
	}
	SendError(c, status, err.Error())
}

func SendSuccess(c *gin.Context, message string, data interface{}) {
	response := SuccessResponse{
		Message: message,
	}
	if data != nil {
		response.Data = data
	}
	c.JSON(http.StatusOK, response)
}

func SendCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{
		Message: message,
		Data:    data,
	})
}
