package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

func TestJWTService_AccessToken(t *testing.T) {
	svc := NewJWTService("test-secret", "15m")
	claims := user.Claims{UserID: "u-1", EmployeeID: "emp-1", Role: user.RoleEmployee}

	token, expiresAt, err := svc.GenerateAccessToken(claims)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotZero(t, expiresAt)

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	tokenType, ok := decoded.Get("type")
	require.True(t, ok)
	assert.Equal(t, TokenTypeAccess, tokenType)

	_, err = svc.ValidateSSEToken(token)
	assert.ErrorIs(t, err, user.ErrInvalidToken)
}

func TestJWTService_SSEToken(t *testing.T) {
	svc := NewJWTService("test-secret", "15m")
	claims := user.Claims{UserID: "u-1", EmployeeID: "emp-1", Role: user.RoleManager}

	token, expiresIn, err := svc.GenerateSSEToken(claims)
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	got, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, claims, got)

	other := NewJWTService("other-secret", "15m")
	_, err = other.ValidateSSEToken(token)
	assert.Error(t, err)
}

func TestJWTService_BadExpiration(t *testing.T) {
	svc := NewJWTService("test-secret", "soon")
	_, _, err := svc.GenerateAccessToken(user.Claims{UserID: "u-1"})
	assert.Error(t, err)
}

func TestClaimsFromMap(t *testing.T) {
	_, err := ClaimsFromMap(map[string]interface{}{"role": "owner"})
	assert.ErrorIs(t, err, user.ErrInvalidToken)

	got, err := ClaimsFromMap(map[string]interface{}{"user_id": "u-1", "employee_id": nil, "role": "owner"})
	require.NoError(t, err)
	assert.Equal(t, user.Claims{UserID: "u-1", Role: user.RoleOwner}, got)
}
