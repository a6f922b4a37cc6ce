// Package auth verifies the bearer tokens issued by the external identity
// provider. Learners are identified by the token's sub claim.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService verifies learner access tokens. GenerateToken mints tokens with
// the same secret for local development and tests.
type JWTService interface {
	// ValidateToken checks the signature and time claims of tokenString and
	// returns its claims. The sub claim must be a UUID.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateToken signs an HS256 token for learnerID that expires after lifetime.
	GenerateToken(ctx context.Context, learnerID uuid.UUID, lifetime time.Duration) (string, error)
}

// Claims are the verified fields of an access token.
type Claims struct {
	LearnerID uuid.UUID
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}
