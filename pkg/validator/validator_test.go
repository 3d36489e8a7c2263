package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email    string `json:"email" validate:"required,email"`
	Status   string `json:"status" validate:"required,oneof=pending accepted"`
	Start    string `json:"start" validate:"omitempty,hhmm"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestValidator_FormatsByJSONName(t *testing.T) {
	v := NewValidator()

	err := v.Validate(sample{Email: "nope", Status: "done", Start: "25:00", Password: "123"})
	require.Error(t, err)

	errs := v.FormatValidationErrors(err)
	assert.Equal(t, "email must be a valid email address", errs["email"])
	assert.Equal(t, "status must be one of: pending accepted", errs["status"])
	assert.Equal(t, "start must be a time in HH:MM format", errs["start"])
	assert.Equal(t, "password must be at least 6", errs["password"])
}

func TestValidator_Valid(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Validate(sample{Email: "a@b.co", Status: "pending", Start: "09:30", Password: "secret1"}))
}
