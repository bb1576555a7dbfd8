package utils_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/matbus-aora/aora-backend/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokenSecret = "token-utils-test-secret"

func TestGenerateAndValidateJWT(t *testing.T) {
	token, err := utils.GenerateJWT("actor-42", tokenSecret, time.Hour, "aora-backend")
	require.NoError(t, err)

	claims, err := utils.ParseAndValidateJWT(token, tokenSecret)
	require.NoError(t, err)
	assert.Equal(t, "actor-42", claims.Subject)
	assert.Equal(t, "aora-backend", claims.Issuer)
}

func TestParseAndValidateJWTWrongSecret(t *testing.T) {
	token, err := utils.GenerateJWT("actor-42", tokenSecret, time.Hour, "aora-backend")
	require.NoError(t, err)

	_, err = utils.ParseAndValidateJWT(token, "a-different-secret")
	assert.Error(t, err)
}

func TestParseAndValidateJWTExpired(t *testing.T) {
	token, err := utils.GenerateJWT("actor-42", tokenSecret, -time.Minute, "aora-backend")
	require.NoError(t, err)

	_, err = utils.ParseAndValidateJWT(token, tokenSecret)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}
