package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotContains(t, hash, "correct horse")

	assert.True(t, VerifyPassword("correct horse battery staple", hash))
	assert.False(t, VerifyPassword("wrong password", hash))
	assert.False(t, VerifyPassword("correct horse battery staple", "not-a-valid-hash"))
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	h1, err := HashPassword("same password")
	require.NoError(t, err)
	h2, err := HashPassword("same password")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestGenerateAccessToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	customerID := uuid.New()

	token, err := GenerateAccessToken(customerID, time.Hour)
	require.NoError(t, err)

	parsed, err := jwt.Parse(token, func(_ *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, customerID.String(), claims["sub"])
}

func TestGenerateSecureOTP(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 20; i++ {
		assert.Regexp(t, pattern, GenerateSecureOTP())
	}
}

func TestHashOTPIsDeterministicAndOpaque(t *testing.T) {
	otp := "123456"
	assert.Equal(t, HashOTP(otp), HashOTP(otp))
	assert.NotEqual(t, HashOTP(otp), HashOTP("654321"))
	assert.NotContains(t, HashOTP(otp), otp)
}

func TestGenerateConfirmationNumber(t *testing.T) {
	pattern := regexp.MustCompile(`^APS-\d{5}$`)
	for i := 0; i < 50; i++ {
		assert.Regexp(t, pattern, GenerateConfirmationNumber())
	}
}
