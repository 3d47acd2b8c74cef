package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/demfetch/internal/core/domain"
	"github.com/samirrijal/demfetch/internal/pkg/logging"
)

// APIError is a structured error response.
type APIError struct {
	Status         int    `json:"status"`
	Code           string `json:"code"`    // bad_request, no_selection, upstream_error, etc.
	Message        string `json:"message"` // Human-readable message
	UpstreamStatus int    `json:"upstream_status,omitempty"`
	RequestID      string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	return sendError(c, APIError{Status: status, Code: code, Message: message})
}

func sendError(c *fiber.Ctx, e APIError) error {
	e.RequestID, _ = c.Locals("requestid").(string)
	return c.Status(e.Status).JSON(e)
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// writeError maps domain errors onto HTTP responses. Every failure is
// reported to the caller; none of them end the session.
func writeError(c *fiber.Ctx, err error) error {
	var (
		valErr *domain.ValidationError
		cfgErr *domain.ConfigError
		reqErr *domain.RequestError
	)

	switch {
	case errors.As(err, &valErr):
		return errBadRequest(c, valErr.Reason)
	case errors.As(err, &cfgErr):
		return newError(c, fiber.StatusServiceUnavailable, "configuration_error", cfgErr.Reason)
	case errors.Is(err, domain.ErrNoSelection):
		return newError(c, fiber.StatusConflict, "no_selection", "select an area first")
	case errors.As(err, &reqErr):
		return sendError(c, APIError{
			Status:         fiber.StatusBadGateway,
			Code:           "upstream_error",
			Message:        reqErr.Error(),
			UpstreamStatus: reqErr.StatusCode,
		})
	}

	logging.FromContext(c.UserContext()).Error("request failed", "error", err)
	return errInternal(c, err.Error())
}
