package mocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/phrazzld/tasks-api/internal/service/auth"
)

// MockJWTService implements auth.JWTService for testing.
type MockJWTService struct {
	GenerateTokenFn        func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateTokenFn        func(ctx context.Context, token string) (*auth.Claims, error)
	GenerateRefreshTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateRefreshTokenFn func(ctx context.Context, token string) (*auth.Claims, error)

	// Token and Err are the defaults when no function is set.
	Token string
	Err   error
}

var _ auth.JWTService = (*MockJWTService)(nil)

// GenerateToken implements auth.JWTService.
func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID)
	}
	return m.Token, m.Err
}

// ValidateToken implements auth.JWTService.
func (m *MockJWTService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, token)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return &auth.Claims{UserID: uuid.New(), TokenType: auth.TokenTypeAccess}, nil
}

// GenerateRefreshToken implements auth.JWTService.
func (m *MockJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateRefreshTokenFn != nil {
		return m.GenerateRefreshTokenFn(ctx, userID)
	}
	return m.Token + "-refresh", m.Err
}

// ValidateRefreshToken implements auth.JWTService.
func (m *MockJWTService) ValidateRefreshToken(ctx context.Context, token string) (*auth.Claims, error) {
	if m.ValidateRefreshTokenFn != nil {
		return m.ValidateRefreshTokenFn(ctx, token)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return &auth.Claims{UserID: uuid.New(), TokenType: auth.TokenTypeRefresh}, nil
}

// IssuePair implements auth.JWTService on top of the two generators.
func (m *MockJWTService) IssuePair(ctx context.Context, userID uuid.UUID) (*auth.TokenPair, error) {
	access, err := m.GenerateToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	refresh, err := m.GenerateRefreshToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &auth.TokenPair{Access: access, Refresh: refresh}, nil
}
