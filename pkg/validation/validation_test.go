package validation

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupRequest struct {
	Username    string   `json:"username" validate:"required,min=5,max=30"`
	Email       string   `json:"email" validate:"required,email"`
	PhoneNumber string   `json:"phone_number,omitempty" validate:"required"`
	Roles       []string `json:"roles" validate:"omitempty,dive,oneof=ROLE_USER ROLE_ADMIN"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	return v
}

func TestMessages_ValidationErrors(t *testing.T) {
	err := newValidator().Struct(signupRequest{Username: "bob", Email: "nope", Roles: []string{"ROLE_KING"}})
	require.Error(t, err)

	messages, ok := Messages(err)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{
		"username must be at least 5 characters long",
		"email is not a valid email address",
		"phone_number must not be blank",
		"roles may only contain ROLE_USER, ROLE_ADMIN or ROLE_SUPER_ADMIN",
	}, messages)
}

func TestMessages_DecodingErrors(t *testing.T) {
	var req signupRequest

	err := json.Unmarshal([]byte(`{"username":`), &req)
	messages, ok := Messages(err)
	require.True(t, ok)
	assert.Equal(t, []string{"request body is not valid JSON"}, messages)

	err = json.Unmarshal([]byte(`{"username": 12}`), &req)
	messages, ok = Messages(err)
	require.True(t, ok)
	assert.Equal(t, []string{"username has the wrong type, expected string"}, messages)

	_, ok = Messages(assert.AnError)
	assert.False(t, ok)
}

func TestDefaultMessage(t *testing.T) {
	assert.Equal(t, "name must be at most 30 characters long", DefaultMessage("Name", "max", "30"))
	assert.Equal(t, "serial_number is not valid", DefaultMessage("serial_number", "alphanum", ""))
}

func TestMessages_EmptyBody(t *testing.T) {
	messages, ok := Messages(io.EOF)
	require.True(t, ok)
	assert.Equal(t, []string{"request body must not be empty"}, messages)
}
