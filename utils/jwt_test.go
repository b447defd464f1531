package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken("user-123", "test@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "test@example.com", claims.Email)
	assert.Equal(t, "user-123", claims.Subject)
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	_, err := ValidateAccessToken("not-a-token")
	assert.Error(t, err)

	_, err = ValidateAccessToken("")
	assert.Error(t, err)
}

func TestGenerateRefreshToken(t *testing.T) {
	first, err := GenerateRefreshToken()
	require.NoError(t, err)
	assert.Len(t, first, 64)

	second, err := GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
