package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/snapvocab/snapvocab-api/internal/domain"
)

// ItemFilter narrows ListByLearner results.
type ItemFilter struct {
	// ListID restricts results to a single list when set.
	ListID *uuid.UUID

	// ExcludeLearned drops items whose interval has reached the learned threshold.
	ExcludeLearned bool
}

// LearnerDueCount is the number of due items a learner has on a given day.
type LearnerDueCount struct {
	LearnerID uuid.UUID
	DueCount  int
}

// VocabularyItemStore defines the interface for vocabulary item persistence.
type VocabularyItemStore interface {
	// Create saves a new vocabulary item.
	// Returns ErrInvalidEntity if the item fails domain validation.
	Create(ctx context.Context, item *domain.VocabularyItem) error

	// GetByID retrieves an item by its unique ID without locking it.
	// Returns ErrItemNotFound if the item does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error)

	// GetForUpdate retrieves an item and locks it against concurrent writers
	// until the surrounding transaction ends. It must be called on a store
	// bound to a transaction with WithTx.
	// Returns ErrItemNotFound if the item does not exist.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error)

	// ListByLearner returns the learner's items ordered by creation time.
	ListByLearner(ctx context.Context, learnerID uuid.UUID, filter ItemFilter) ([]*domain.VocabularyItem, error)

	// UpdateSchedule persists the SRS fields of an item
	// (easiness factor, interval, repetitions, correct streak, review dates,
	// learned flag and updated_at).
	// Returns ErrItemNotFound if the item does not exist.
	UpdateSchedule(ctx context.Context, item *domain.VocabularyItem) error

	// CountDueByLearner counts, per learner, the non-learned items that are due
	// on the given day. Learners with nothing due are omitted.
	CountDueByLearner(ctx context.Context, today time.Time) ([]LearnerDueCount, error)

	// WithTx returns a new VocabularyItemStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) VocabularyItemStore
}
