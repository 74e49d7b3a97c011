package types

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_Valid(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleProvider, true},
		{RolePerformer, true},
		{Role("Provider"), false},
		{Role("admin"), false},
		{Role(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.Valid())
		})
	}
}

func TestCreateUserRequest_Role(t *testing.T) {
	validate := validator.New()
	base := CreateUserRequest{Name: "Ada", Email: "ada@example.com", Password: "correct-horse"}

	tests := []struct {
		name    string
		role    Role
		wantTag string
	}{
		{name: "provider", role: RoleProvider},
		{name: "performer", role: RolePerformer},
		{name: "missing", role: "", wantTag: "required"},
		{name: "unknown", role: "admin", wantTag: "oneof"},
		{name: "wrong case", role: "Performer", wantTag: "oneof"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			req.Role = tt.role

			err := validate.Struct(req)
			if tt.wantTag == "" {
				require.NoError(t, err)
				return
			}

			var fieldErrs validator.ValidationErrors
			require.ErrorAs(t, err, &fieldErrs)
			require.Len(t, fieldErrs, 1)
			assert.Equal(t, "Role", fieldErrs[0].Field())
			assert.Equal(t, tt.wantTag, fieldErrs[0].Tag())
		})
	}
}

func TestCreateUserRequest_DecodesRole(t *testing.T) {
	var req CreateUserRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Ada","email":"ada@example.com","password":"correct-horse","role":"performer"}`), &req))

	assert.Equal(t, RolePerformer, req.Role)
	assert.NoError(t, validator.New().Struct(req))
}

func TestUpdatePasswordRequest_NewPasswordLength(t *testing.T) {
	validate := validator.New()

	assert.NoError(t, validate.Struct(UpdatePasswordRequest{CurrentPassword: "old", NewPassword: "12345678"}))
	assert.Error(t, validate.Struct(UpdatePasswordRequest{CurrentPassword: "old", NewPassword: "1234567"}))
}

func TestLoginResponse_CarriesRole(t *testing.T) {
	for _, role := range []Role{RoleProvider, RolePerformer} {
		t.Run(string(role), func(t *testing.T) {
			data, err := json.Marshal(LoginResponse{
				User:  &User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com", Role: role, PasswordSet: true},
				Token: "signed",
			})
			require.NoError(t, err)

			var body map[string]any
			require.NoError(t, json.Unmarshal(data, &body))
			user := body["user"].(map[string]any)
			assert.Equal(t, string(role), user["role"])
			assert.Equal(t, true, user["password_set"])
			assert.NotContains(t, user, "password_hash")
			assert.Equal(t, "signed", body["token"])
		})
	}
}
