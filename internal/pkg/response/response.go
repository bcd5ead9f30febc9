package response

import (
	"errors"

	"canopy-backend/internal/domain"

	"github.com/gofiber/fiber/v2"
)

// SuccessBody is the standardized success JSON shape.
type SuccessBody struct {
	Status   string      `json:"status"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data"`
	Metadata interface{} `json:"metadata,omitempty"`
}

// ErrorBody is the standardized error JSON shape.
type ErrorBody struct {
	Status string      `json:"status"`
	Error  ErrorDetail `json:"error"`
}

// ErrorDetail is the nested error object.
type ErrorDetail struct {
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode"`
	Details    interface{} `json:"details,omitempty"`
}

const statusSuccess = "success"
const statusError = "error"

// Success sends a 200 OK response with the standard success format.
func Success(c *fiber.Ctx, message string, data interface{}, metadata interface{}) error {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return c.Status(fiber.StatusOK).JSON(SuccessBody{
		Status:   statusSuccess,
		Message:  message,
		Data:     data,
		Metadata: metadata,
	})
}

// SuccessCreated sends a 201 Created response with the standard success format.
func SuccessCreated(c *fiber.Ctx, message string, data interface{}, metadata interface{}) error {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return c.Status(fiber.StatusCreated).JSON(SuccessBody{
		Status:   statusSuccess,
		Message:  message,
		Data:     data,
		Metadata: metadata,
	})
}

// Error sends a response with the standard error format.
func Error(c *fiber.Ctx, message string, statusCode int, details interface{}) error {
	if details == nil {
		details = map[string]interface{}{}
	}
	return c.Status(statusCode).JSON(ErrorBody{
		Status: statusError,
		Error: ErrorDetail{
			Message:    message,
			StatusCode: statusCode,
			Details:    details,
		},
	})
}

// Unauthorized sends 401 with the same shape as other errors.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusUnauthorized, nil)
}

// engineStatus maps every engine error kind to an HTTP status code.
var engineStatus = []struct {
	err  error
	code int
}{
	{domain.ErrUnauthorized, fiber.StatusForbidden},
	{domain.ErrInvalidEmitter, fiber.StatusNotFound},
	{domain.ErrInvalidProject, fiber.StatusBadRequest},
	{domain.ErrInsufficientCredits, fiber.StatusBadRequest},
	{domain.ErrAlreadyMatched, fiber.StatusConflict},
	{domain.ErrSystemPaused, fiber.StatusServiceUnavailable},
	{domain.ErrInvalidAmount, fiber.StatusBadRequest},
	{domain.ErrOperationFailed, fiber.StatusBadGateway},
	{domain.ErrInvalidMode, fiber.StatusBadRequest},
	{domain.ErrMetadataTooLong, fiber.StatusBadRequest},
	{domain.ErrNoPendingMatch, fiber.StatusNotFound},
	{domain.ErrGovernanceDenied, fiber.StatusForbidden},
	{domain.ErrAlreadyRetired, fiber.StatusConflict},
	{domain.ErrNoPreference, fiber.StatusNotFound},
}

// EngineError sends the standard error format for an engine error,
// mapping the sentinel to its HTTP status. Unknown errors become 500.
func EngineError(c *fiber.Ctx, err error) error {
	for _, m := range engineStatus {
		if errors.Is(err, m.err) {
			return Error(c, m.err.Error(), m.code, nil)
		}
	}
	return Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}
