package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/passage/internal/shared/errors"
)

type profileQuery struct {
	Token  string `form:"token" validate:"required,uuid"`
	Format string `form:"format" validate:"omitempty,oneof=singbox clash base64"`
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, ValidateStruct(profileQuery{Token: "3f1b6c1e-6b8a-4a33-9d1c-2f0e7c9b5a10", Format: "clash"}))

	err := ValidateStruct(profileQuery{Token: "nope", Format: "v2rayng"})
	require.Error(t, err)

	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
	assert.Contains(t, appErr.Details, "token must be a valid UUID")
	assert.Contains(t, appErr.Details, "format must be one of [singbox clash base64]")
}
