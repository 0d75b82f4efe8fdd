package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yabetsTesfaye/addiscares-backend/pkg/domain"
	dErrors "github.com/yabetsTesfaye/addiscares-backend/pkg/domain-errors"
)

func newService() *JWTService {
	return NewJWTService("test-signing-key", "addiscares", "addiscares-api")
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newService()
	principal := domain.NewPrincipalID()

	token, err := svc.GenerateAccessToken(principal, domain.RoleGovernment, time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, principal.String(), claims.PrincipalID)
	assert.Equal(t, "government", claims.Role)
}

func TestValidateTokenFailures(t *testing.T) {
	svc := newService()
	principal := domain.NewPrincipalID()

	t.Run("expired token", func(t *testing.T) {
		token, err := svc.GenerateAccessToken(principal, domain.RoleReporter, -time.Minute)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := NewJWTService("different-key", "addiscares", "addiscares-api")
		token, err := other.GenerateAccessToken(principal, domain.RoleReporter, time.Hour)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.jwt")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func TestValidatorAdapter(t *testing.T) {
	svc := newService()
	adapter := NewValidatorAdapter(svc)
	principal := domain.NewPrincipalID()

	token, err := svc.GenerateAccessToken(principal, domain.RoleAdmin, time.Hour)
	require.NoError(t, err)

	claims, err := adapter.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, principal, claims.PrincipalID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}
