package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kevin16883/Bridge-sub000/internal/assist"
	"github.com/Kevin16883/Bridge-sub000/internal/db"
	"github.com/Kevin16883/Bridge-sub000/internal/llm"
	"github.com/Kevin16883/Bridge-sub000/internal/schemas"
)

func TestErrorMessages(t *testing.T) {
	userID := uuid.New()

	assert.Equal(t, "email already registered: test@example.com", (&ErrEmailAlreadyExists{Email: "test@example.com"}).Error())
	assert.Equal(t, "invalid email or password", (&ErrInvalidCredentials{}).Error())
	assert.Equal(t, "user not found: "+userID.String(), (&ErrUserNotFound{UserID: userID}).Error())
	assert.Equal(t, "current password is incorrect", (&ErrPasswordMismatch{}).Error())
	assert.Equal(t, "validation error: email - invalid format", (&ErrValidation{Field: "email", Message: "invalid format"}).Error())
	assert.Equal(t, "project not found: abc", (&ErrNotFound{Resource: "project", ID: "abc"}).Error())
	assert.Equal(t, "no access", (&ErrForbidden{Reason: "no access"}).Error())
}

func TestClassify(t *testing.T) {
	type payload struct {
		Email string `validate:"required,email"`
	}
	fieldErrs := validator.New().Struct(payload{Email: "nope"})
	require.Error(t, fieldErrs)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "nil", err: nil, wantStatus: http.StatusOK, wantCode: ""},
		{name: "email taken", err: &ErrEmailAlreadyExists{Email: "a@b.c"}, wantStatus: http.StatusConflict, wantCode: "email_taken"},
		{name: "db email taken", err: fmt.Errorf("failed to create user: %w", db.ErrEmailTaken), wantStatus: http.StatusConflict, wantCode: "email_taken"},
		{name: "invalid credentials", err: &ErrInvalidCredentials{}, wantStatus: http.StatusUnauthorized, wantCode: "unauthorized"},
		{name: "password mismatch", err: &ErrPasswordMismatch{}, wantStatus: http.StatusUnauthorized, wantCode: "unauthorized"},
		{name: "no caller", err: errUnauthorized, wantStatus: http.StatusUnauthorized, wantCode: "unauthorized"},
		{name: "forbidden", err: &ErrForbidden{Reason: "x"}, wantStatus: http.StatusForbidden, wantCode: "forbidden"},
		{name: "user not found", err: &ErrUserNotFound{UserID: uuid.New()}, wantStatus: http.StatusNotFound, wantCode: "not_found"},
		{name: "resource not found", err: &ErrNotFound{Resource: "question", ID: "1"}, wantStatus: http.StatusNotFound, wantCode: "not_found"},
		{name: "db row not found", err: fmt.Errorf("failed to save: %w", db.ErrNotFound), wantStatus: http.StatusNotFound, wantCode: "not_found"},
		{name: "validation", err: &ErrValidation{Field: "f", Message: "m"}, wantStatus: http.StatusBadRequest, wantCode: "invalid_request"},
		{name: "validator field errors", err: fieldErrs, wantStatus: http.StatusBadRequest, wantCode: "invalid_request"},
		{
			name:       "input too short",
			err:        &assist.InputTooShortError{Field: "demand", Min: assist.MinDemandLength, Got: 3},
			wantStatus: http.StatusBadRequest,
			wantCode:   "input_too_short",
		},
		{
			name:       "malformed response",
			err:        fmt.Errorf("failed to decompose demand: %w", &schemas.MalformedResponseError{Schema: "task_breakdown", Snippet: "oops"}),
			wantStatus: http.StatusBadGateway,
			wantCode:   "malformed_response",
		},
		{
			name: "schema violation",
			err: fmt.Errorf("failed to evaluate response: %w", &schemas.SchemaViolationError{
				Schema:     "evaluation_result",
				FieldError: schemas.FieldError{Field: "score", Message: "score is required"},
				Total:      1,
			}),
			wantStatus: http.StatusBadGateway,
			wantCode:   "schema_violation",
		},
		{
			name:       "empty completion",
			err:        fmt.Errorf("failed to generate tags: %w", llm.ErrEmptyCompletion),
			wantStatus: http.StatusBadGateway,
			wantCode:   "empty_completion",
		},
		{
			name:       "upstream unavailable",
			err:        fmt.Errorf("failed to decompose demand: %w", &llm.UpstreamError{Provider: llm.ProviderOpenAI, Attempts: 3, StatusCode: 503, Cause: errors.New("service unavailable")}),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "upstream_unavailable",
		},
		{
			name:       "upstream timeout",
			err:        &llm.UpstreamError{Provider: llm.ProviderOpenAI, Attempts: 3, Cause: context.DeadlineExceeded},
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   "upstream_timeout",
		},
		{name: "bare deadline", err: context.DeadlineExceeded, wantStatus: http.StatusGatewayTimeout, wantCode: "upstream_timeout"},
		{name: "unknown", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := classify(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestValidationError_FirstField(t *testing.T) {
	type payload struct {
		Name  string `validate:"required"`
		Email string `validate:"required,email"`
	}
	err := validationError(validator.New().Struct(payload{}))

	var ve *ErrValidation
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Name", ve.Field)
	assert.Equal(t, "failed on 'required'", ve.Message)
}
