package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/snapvocab/snapvocab-api/internal/domain"
)

// ReviewAttemptStore defines the interface for the append-only review attempt log.
// Attempts are never updated or deleted.
type ReviewAttemptStore interface {
	// Create appends an attempt to the log.
	// Returns ErrDuplicateRequestID if the learner already recorded an attempt
	// with the same request ID.
	Create(ctx context.Context, attempt *domain.ReviewAttempt) error

	// GetByRequestID finds the attempt a learner recorded with the given request ID.
	// Returns ErrAttemptNotFound if there is none.
	GetByRequestID(ctx context.Context, learnerID, requestID uuid.UUID) (*domain.ReviewAttempt, error)

	// ListByLearner returns the learner's most recent attempts, newest first.
	// A limit <= 0 returns all attempts.
	ListByLearner(ctx context.Context, learnerID uuid.UUID, limit int) ([]*domain.ReviewAttempt, error)

	// WithTx returns a new ReviewAttemptStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ReviewAttemptStore
}
