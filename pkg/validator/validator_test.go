package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Field:   "email",
		Message: "is required",
	}

	result := err.Error()

	assert.Equal(t, "email: is required", result)
}

func TestValidationErrors_Error_Empty(t *testing.T) {
	var errs ValidationErrors

	result := errs.Error()

	assert.Equal(t, "", result)
}

func TestValidationErrors_Error_Multiple(t *testing.T) {
	errs := ValidationErrors{
		{Field: "email", Message: "is required"},
		{Field: "password", Message: "too short"},
	}

	result := errs.Error()

	assert.Contains(t, result, "validation errors:")
	assert.Contains(t, result, "email: is required")
	assert.Contains(t, result, "password: too short")
}

func TestValidationErrors_HasErrors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var errs ValidationErrors
		assert.False(t, errs.HasErrors())
	})

	t.Run("with errors", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "test", Message: "error"},
		}
		assert.True(t, errs.HasErrors())
	})
}

func TestValidationErrors_Add(t *testing.T) {
	var errs ValidationErrors

	errs.Add("email", "is required")
	errs.Add("password", "too short")

	require.Len(t, errs, 2)
	assert.Equal(t, "email", errs[0].Field)
	assert.Equal(t, "password", errs[1].Field)
}

func TestValidateRange_Valid(t *testing.T) {
	tests := []struct {
		name  string
		value int
		min   int
		max   int
	}{
		{"exact min", 1, 1, 10},
		{"exact max", 10, 1, 10},
		{"in range", 5, 1, 10},
		{"no max", 100, 1, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRange("field", tc.value, tc.min, tc.max)
			assert.NoError(t, err)
		})
	}
}

func TestValidateRange_TooSmall(t *testing.T) {
	err := ValidateRange("age", 0, 1, 100)

	require.Error(t, err)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Message, "at least 1")
}

func TestValidateRange_TooLarge(t *testing.T) {
	err := ValidateRange("age", 101, 1, 100)

	require.Error(t, err)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Message, "at most 100")
}

func TestValidateEnum_Valid(t *testing.T) {
	allowed := []string{"active", "inactive", "pending"}

	err := ValidateEnum("status", "active", allowed)

	assert.NoError(t, err)
}

func TestValidateEnum_Invalid(t *testing.T) {
	allowed := []string{"active", "inactive", "pending"}

	err := ValidateEnum("status", "unknown", allowed)

	require.Error(t, err)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Message, "must be one of")
}

func TestValidateEnum_EmptyAllowed(t *testing.T) {
	err := ValidateEnum("status", "any", []string{})

	require.Error(t, err)
}

