package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Kevin16883/Bridge-sub000/internal/assist"
	"github.com/Kevin16883/Bridge-sub000/internal/db"
	"github.com/Kevin16883/Bridge-sub000/internal/llm"
	"github.com/Kevin16883/Bridge-sub000/internal/schemas"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates a missing resource
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrForbidden indicates the caller's role may not perform the action
type ErrForbidden struct {
	Reason string
}

func (e *ErrForbidden) Error() string {
	return e.Reason
}

// errUnauthorized is returned when a route that needs a caller has none
var errUnauthorized = errors.New("authentication required")

func classify(err error) (int, string) {
	var (
		emailErr     *ErrEmailAlreadyExists
		credsErr     *ErrInvalidCredentials
		mismatchErr  *ErrPasswordMismatch
		userErr      *ErrUserNotFound
		notFoundErr  *ErrNotFound
		forbiddenErr *ErrForbidden
		validErr     *ErrValidation
		fieldErrs    validator.ValidationErrors
		tooShortErr  *assist.InputTooShortError
		malformedErr *schemas.MalformedResponseError
		violationErr *schemas.SchemaViolationError
		upstreamErr  *llm.UpstreamError
	)

	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.As(err, &emailErr), errors.Is(err, db.ErrEmailTaken):
		return http.StatusConflict, "email_taken"
	case errors.As(err, &credsErr), errors.As(err, &mismatchErr), errors.Is(err, errUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.As(err, &forbiddenErr):
		return http.StatusForbidden, "forbidden"
	case errors.As(err, &userErr), errors.As(err, &notFoundErr), errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.As(err, &validErr), errors.As(err, &fieldErrs):
		return http.StatusBadRequest, "invalid_request"
	case errors.As(err, &tooShortErr):
		return http.StatusBadRequest, "input_too_short"
	case errors.As(err, &malformedErr):
		return http.StatusBadGateway, "malformed_response"
	case errors.As(err, &violationErr):
		return http.StatusBadGateway, "schema_violation"
	case errors.Is(err, llm.ErrEmptyCompletion):
		return http.StatusBadGateway, "empty_completion"
	case errors.As(err, &upstreamErr):
		if upstreamErr.Timeout() {
			return http.StatusGatewayTimeout, "upstream_timeout"
		}
		return http.StatusServiceUnavailable, "upstream_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "upstream_timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
