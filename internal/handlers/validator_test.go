package handlers

import (
	"testing"

	"github.com/anonto42/pulse-social/backend/internal/apperror"
	"github.com/anonto42/pulse-social/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(&models.SignupRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"}))

	err := v.Validate(&models.SignupRequest{Username: "al", Email: "not-an-email"})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "username must be at least 3 characters", appErr.Message)
	assert.Contains(t, appErr.Detail, "email must be a valid email address")
	assert.Contains(t, appErr.Detail, "password is required")

	assert.NoError(t, v.Validate(&models.UpdateProfileRequest{}))
	assert.Error(t, v.Validate(&models.UpdateProfileRequest{Email: "nope"}))
}
