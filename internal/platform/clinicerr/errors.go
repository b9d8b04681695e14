// Package clinicerr defines the failure kinds shared by every domain
// service. Services return these instead of logging or retrying; the HTTP
// layer maps each kind to a status code in one place (HTTPError).
package clinicerr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ValidationError reports malformed or out-of-range input on a named field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError for a field.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func Validationf(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a reference to an entity that does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// NotFound builds a NotFoundError for an entity kind and id.
func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// ConflictError reports an illegal state transition or a lost optimistic
// concurrency race. The caller decides whether a retry makes sense.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: %s", e.Reason)
}

func Conflict(reason string) error {
	return &ConflictError{Reason: reason}
}

func Conflictf(format string, args ...interface{}) error {
	return &ConflictError{Reason: fmt.Sprintf(format, args...)}
}

// InsufficientBalanceError reports a debit or redemption that exceeds the
// patient's current point balance.
type InsufficientBalanceError struct {
	Required  int
	Available int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: required %d, available %d", e.Required, e.Available)
}

func InsufficientBalance(required, available int) error {
	return &InsufficientBalanceError{Required: required, Available: available}
}

// BalanceCapError reports a credit that would push the balance past the cap.
type BalanceCapError struct {
	Attempted int
	Max       int
}

func (e *BalanceCapError) Error() string {
	return fmt.Sprintf("balance cap exceeded: attempted %d, max %d", e.Attempted, e.Max)
}

func BalanceCap(attempted, max int) error {
	return &BalanceCapError{Attempted: attempted, Max: max}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// HTTPError converts a domain error into an echo HTTPError. Unknown errors
// become 500s so the recovery/logging middleware sees them.
func HTTPError(err error) *echo.HTTPError {
	var (
		nf *NotFoundError
		cf *ConflictError
		ve *ValidationError
		ib *InsufficientBalanceError
		bc *BalanceCapError
	)
	switch {
	case errors.As(err, &nf):
		return echo.NewHTTPError(http.StatusNotFound, nf.Error())
	case errors.As(err, &cf):
		return echo.NewHTTPError(http.StatusConflict, cf.Error())
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
	case errors.As(err, &ib):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, ib.Error())
	case errors.As(err, &bc):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, bc.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
