package jwttoken

import (
	"github.com/yabetsTesfaye/addiscares-backend/internal/platform/middleware"
	"github.com/yabetsTesfaye/addiscares-backend/pkg/domain"
	dErrors "github.com/yabetsTesfaye/addiscares-backend/pkg/domain-errors"
)

// ValidatorAdapter adapts JWTService to the middleware.JWTValidator
// interface, translating string claims into domain types.
type ValidatorAdapter struct {
	svc *JWTService
}

func NewValidatorAdapter(svc *JWTService) *ValidatorAdapter {
	return &ValidatorAdapter{svc: svc}
}

func (a *ValidatorAdapter) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	claims, err := a.svc.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	principal, err := domain.ParsePrincipalID(claims.PrincipalID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	return &middleware.JWTClaims{PrincipalID: principal, Role: role}, nil
}
