package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret"

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken(42, "cashier@pos.test", testSecret, 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "cashier@pos.test", claims.Email)
}

func TestValidateToken(t *testing.T) {
	validToken, err := GenerateToken(7, "admin@pos.test", testSecret, time.Hour)
	require.NoError(t, err)

	expiredToken, err := GenerateToken(7, "admin@pos.test", testSecret, -time.Hour)
	require.NoError(t, err)

	wrongSecretToken, err := GenerateToken(7, "admin@pos.test", "other-secret", time.Hour)
	require.NoError(t, err)

	noneToken := func() string {
		tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "7"})
		s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		return s
	}()

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{name: "valid token", token: validToken},
		{name: "expired token", token: expiredToken, wantErr: true},
		{name: "wrong secret", token: wrongSecretToken, wantErr: true},
		{name: "none algorithm rejected", token: noneToken, wantErr: true},
		{name: "garbage", token: "not-a-token", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateToken(tc.token, testSecret)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
