package utils

import (
	"testing"
	"time"

	"sumitpay/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("s3cret", models.UserClaims{UserID: 7, Role: models.RoleAdmin}, time.Minute)
	require.NoError(t, err)

	claims, err := ParseToken("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.True(t, claims.IsAdmin())
	assert.Equal(t, "7", claims.Subject)
}

func TestParseTokenRejects(t *testing.T) {
	valid, err := GenerateToken("s3cret", models.UserClaims{UserID: 7}, time.Minute)
	require.NoError(t, err)
	expired, err := GenerateToken("s3cret", models.UserClaims{UserID: 7}, -time.Minute)
	require.NoError(t, err)
	anonymous, err := GenerateToken("s3cret", models.UserClaims{}, time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{"wrong secret", "other", valid},
		{"expired", "s3cret", expired},
		{"no user", "s3cret", anonymous},
		{"garbage", "s3cret", "not.a.token"},
		{"no secret", "", valid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.secret, tt.token)
			assert.Error(t, err)
		})
	}
}
