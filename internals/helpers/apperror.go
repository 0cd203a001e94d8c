// file: internals/helpers/apperror.go
package helper

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

/* ===============================
   Error taxonomy
=================================*/

// ValidationError is a user error reported synchronously, never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// PermissionError is an authorization failure (wrong role, not the assigned approver, ...).
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string { return e.Message }

// NotFoundError names the missing entity.
type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string {
	if e.ID == nil {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

var (
	// ErrNothingToRoute marks a routing gap: no step, no unit or no eligible approver.
	ErrNothingToRoute = errors.New("nothing to route")
	// ErrMalformedSchema is a configuration fault on a template field schema.
	ErrMalformedSchema = errors.New("malformed field schema")
	// ErrHierarchyCycle is a configuration fault in the unit parent chain.
	ErrHierarchyCycle = errors.New("organizational hierarchy cycle")
)

func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) error {
	return &PermissionError{Message: fmt.Sprintf(format, args...)}
}

func NotFound(entity string, id any) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsPermission(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

// FromAppError maps the taxonomy onto the standard JSON error shape.
func FromAppError(c *fiber.Ctx, err error) error {
	var (
		ve *ValidationError
		pe *PermissionError
		ne *NotFoundError
		fe *fiber.Error
	)
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ve):
		if ve.Field != "" {
			return JsonValidationError(c, map[string][]string{ve.Field: {ve.Message}})
		}
		return JsonError(c, fiber.StatusBadRequest, ve.Message)
	case errors.As(err, &pe):
		return JsonError(c, fiber.StatusForbidden, pe.Message)
	case errors.As(err, &ne):
		return JsonError(c, fiber.StatusNotFound, ne.Error())
	case errors.As(err, &fe):
		return JsonError(c, fe.Code, fe.Message)
	case errors.Is(err, ErrMalformedSchema), errors.Is(err, ErrHierarchyCycle):
		zap.L().Error("configuration fault", zap.Error(err))
		return JsonError(c, fiber.StatusInternalServerError, err.Error())
	default:
		zap.L().Error("unhandled error", zap.Error(err))
		return JsonError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func IsNothingToRoute(err error) bool {
	return errors.Is(err, ErrNothingToRoute)
}
