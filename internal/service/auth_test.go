package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hms/config"
	"hms/internal/domain"
)

const testSigningKey = "test-signing-key"

func signToken(t *testing.T, key string, method jwt.SigningMethod, claims tokenClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func validClaims(userID int64) tokenClaims {
	return tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
		Role:   domain.UserRoleReceptionist,
	}
}

func TestAuthService_ParseToken(t *testing.T) {
	svc := NewAuthService(config.JWTConfig{SigningKey: testSigningKey}, zap.NewNop())

	userID, role, err := svc.ParseToken(context.Background(), signToken(t, testSigningKey, jwt.SigningMethodHS256, validClaims(17)))
	require.NoError(t, err)
	assert.Equal(t, int64(17), userID)
	assert.Equal(t, domain.UserRoleReceptionist, role)
}

func TestAuthService_ParseTokenRejects(t *testing.T) {
	svc := NewAuthService(config.JWTConfig{SigningKey: testSigningKey}, zap.NewNop())

	expired := validClaims(17)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "wrong key", token: signToken(t, "other-key", jwt.SigningMethodHS256, validClaims(17))},
		{name: "expired", token: signToken(t, testSigningKey, jwt.SigningMethodHS256, expired)},
		{name: "no user", token: signToken(t, testSigningKey, jwt.SigningMethodHS256, validClaims(0))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.ParseToken(context.Background(), tt.token)
			assert.ErrorIs(t, err, domain.ErrInvalidToken)
		})
	}
}
