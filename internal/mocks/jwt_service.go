package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/snapvocab/snapvocab-api/internal/service/auth"
)

// MockJWTService implements auth.JWTService for testing
type MockJWTService struct {
	ValidateTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)
	GenerateTokenFn func(ctx context.Context, learnerID uuid.UUID, lifetime time.Duration) (string, error)

	// Default values used when functions aren't explicitly defined
	Token       string
	Err         error
	Claims      *auth.Claims
	ValidateErr error
}

var _ auth.JWTService = (*MockJWTService)(nil)

// NewLearnerJWTService returns a mock that accepts any token as learnerID.
func NewLearnerJWTService(learnerID uuid.UUID) *MockJWTService {
	return &MockJWTService{
		Claims: &auth.Claims{LearnerID: learnerID, Subject: learnerID.String()},
	}
}

// ValidateToken implements the auth.JWTService interface
func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	return m.Claims, m.ValidateErr
}

// GenerateToken implements the auth.JWTService interface
func (m *MockJWTService) GenerateToken(
	ctx context.Context,
	learnerID uuid.UUID,
	lifetime time.Duration,
) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, learnerID, lifetime)
	}
	return m.Token, m.Err
}
