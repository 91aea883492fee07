package utils

import (
	"errors"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"

	"teamhub/apperr"
)

// Pointer returns a pointer to the given value
func Pointer[T any](v T) *T {
	return &v
}

// ErrorResponse creates a standardized error response
func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	response := fiber.Map{
		"success": false,
		"error":   message,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	return c.Status(status).JSON(response)
}

// SuccessResponse creates a standardized success response
func SuccessResponse(data interface{}) fiber.Map {
	return fiber.Map{
		"success": true,
		"data":    data,
	}
}

// DomainErrorResponse maps a service-layer error onto the HTTP status
// taxonomy. Client-correctable errors surface their message; anything
// unrecognized is reported to Sentry and hidden behind a generic 500.
func DomainErrorResponse(c *fiber.Ctx, err error) error {
	status := StatusForError(err)
	if status == fiber.StatusInternalServerError {
		sentry.CaptureException(err)
		return ErrorResponse(c, status, "Internal server error", nil)
	}
	return ErrorResponse(c, status, err.Error(), nil)
}

// StatusForError resolves the HTTP status for a domain error.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperr.ErrAccessDenied), errors.Is(err, apperr.ErrNotOwner):
		return fiber.StatusForbidden
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrTargetNotMember):
		return fiber.StatusBadRequest
	case errors.Is(err, apperr.ErrDuplicateReaction), errors.Is(err, apperr.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, apperr.ErrAuthentication):
		return fiber.StatusUnauthorized
	}
	return fiber.StatusInternalServerError
}

// ParseUint safely parses a string to uint
func ParseUint(s string) uint {
	i, _ := strconv.ParseUint(s, 10, 32)
	return uint(i)
}

// PaginatedResponse structure for paginated results
type PaginatedResponse struct {
	Data  interface{} `json:"data"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}
