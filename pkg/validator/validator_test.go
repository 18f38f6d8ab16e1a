package validator_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/contactguard/pkg/validator"
)

func TestApply_AccumulatesAllFailures(t *testing.T) {
	t.Parallel()

	err := validator.Apply(
		validator.Required("name", ""),
		validator.ValidEmail("email", "nope"),
		validator.MinLen("message", "short", 10),
		validator.MaxLen("company", "ok", 200),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, validator.ErrValidationFailed)
	assert.True(t, validator.IsValidationError(err))

	verrs := validator.ExtractValidationErrors(err)
	require.Len(t, verrs, 3)
	assert.Equal(t, []string{"name", "email", "message"}, verrs.Fields())
	assert.Equal(t, []string{validator.ReasonTooShort}, verrs.Get("message"))
	assert.False(t, verrs.Has("company"))
	assert.Contains(t, err.Error(), "email: invalid email address")

	wrapped := fmt.Errorf("submit: %w", err)
	assert.Len(t, validator.ExtractValidationErrors(wrapped), 3)

	assert.NoError(t, validator.Apply(validator.Required("name", "Ali")))
	assert.Nil(t, validator.ExtractValidationErrors(errors.New("other")))
}

func TestFirst_StopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	e, failed := validator.First(
		validator.Required("message", ""),
		validator.MinLen("message", "", 10),
	)
	require.True(t, failed)
	assert.Equal(t, validator.ReasonRequired, e.Reason)
	assert.Equal(t, "Message is required", e.Message)

	_, failed = validator.First(validator.Required("name", "Ali"), validator.MinLen("name", "Ali", 2))
	assert.False(t, failed)
}

func TestLengthCountsRunes(t *testing.T) {
	t.Parallel()

	arabic := "علي" // 3 runes, 6 bytes
	assert.NoError(t, validator.Apply(validator.MaxLen("name", arabic, 3)))
	assert.NoError(t, validator.Apply(validator.MinLen("name", arabic, 3)))
	assert.Error(t, validator.Apply(validator.MinLen("name", arabic, 4)))

	assert.NoError(t, validator.Apply(validator.MaxLen("message", strings.Repeat("x", 1000), 1000)))
	assert.Error(t, validator.Apply(validator.MaxLen("message", strings.Repeat("x", 1001), 1000)))
}

func TestIsEmail(t *testing.T) {
	t.Parallel()

	valid := []string{"test@example.com", "a@b.com", "first.last+tag@sub.example.co.uk"}
	invalid := []string{
		"", "invalid-email", "@example.com", "user@", "user@localhost", "user@example..com",
		"user@.example.com", "user@example.com.", "Name <user@example.com>", " user@example.com",
		"user@example.com\r\nBcc: x@y.com", "a@b@c.com",
	}
	for _, v := range valid {
		assert.True(t, validator.IsEmail(v), v)
	}
	for _, v := range invalid {
		assert.False(t, validator.IsEmail(v), v)
	}
}

func TestIsPhone(t *testing.T) {
	t.Parallel()

	valid := []string{"+966501234567", "966501234567", "0501234567", "501234567", "050-123 4567", "+966 59 123 4567"}
	invalid := []string{"123", "", "+966401234567", "05012345678", "+1 202 555 0100", "abcdefghij", "0501234567x"}
	for _, v := range valid {
		assert.True(t, validator.IsPhone(v), v)
	}
	for _, v := range invalid {
		assert.False(t, validator.IsPhone(v), v)
	}
}
