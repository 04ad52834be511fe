package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	tokenString, err := GenerateToken("secret", 42, time.Now().Add(time.Hour))
	require.NoError(t, err)

	userID, err := ParseToken("secret", tokenString)
	require.NoError(t, err)
	assert.EqualValues(t, 42, userID)
}

func TestParseTokenWrongSecret(t *testing.T) {
	tokenString, err := GenerateToken("secret", 42, time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = ParseToken("other-secret", tokenString)
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	tokenString, err := GenerateToken("secret", 42, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = ParseToken("secret", tokenString)
	assert.Error(t, err)
}
