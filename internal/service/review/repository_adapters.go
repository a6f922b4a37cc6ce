package review

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/snapvocab/snapvocab-api/internal/domain"
	"github.com/snapvocab/snapvocab-api/internal/store"
)

// ItemRepository is the slice of vocabulary storage the review service needs.
type ItemRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error)
	ListByLearner(ctx context.Context, learnerID uuid.UUID, filter store.ItemFilter) ([]*domain.VocabularyItem, error)
	UpdateSchedule(ctx context.Context, item *domain.VocabularyItem) error
	CountDueByLearner(ctx context.Context, today time.Time) ([]store.LearnerDueCount, error)

	// WithTx returns a repository bound to tx.
	WithTx(tx *sql.Tx) ItemRepository

	// DB returns the connection pool used to open transactions.
	DB() *sql.DB
}

// AttemptRepository is the slice of attempt storage the review service needs.
type AttemptRepository interface {
	Create(ctx context.Context, attempt *domain.ReviewAttempt) error
	GetByRequestID(ctx context.Context, learnerID, requestID uuid.UUID) (*domain.ReviewAttempt, error)
	ListByLearner(ctx context.Context, learnerID uuid.UUID, limit int) ([]*domain.ReviewAttempt, error)
	WithTx(tx *sql.Tx) AttemptRepository
}

// NewItemRepositoryAdapter lets a store.VocabularyItemStore serve as an ItemRepository.
func NewItemRepositoryAdapter(itemStore store.VocabularyItemStore, db *sql.DB) ItemRepository {
	return &itemRepositoryAdapter{store: itemStore, db: db}
}

type itemRepositoryAdapter struct {
	store store.VocabularyItemStore
	db    *sql.DB
}

func (a *itemRepositoryAdapter) GetByID(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error) {
	return a.store.GetByID(ctx, id)
}

func (a *itemRepositoryAdapter) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error) {
	return a.store.GetForUpdate(ctx, id)
}

func (a *itemRepositoryAdapter) ListByLearner(
	ctx context.Context,
	learnerID uuid.UUID,
	filter store.ItemFilter,
) ([]*domain.VocabularyItem, error) {
	return a.store.ListByLearner(ctx, learnerID, filter)
}

func (a *itemRepositoryAdapter) UpdateSchedule(ctx context.Context, item *domain.VocabularyItem) error {
	return a.store.UpdateSchedule(ctx, item)
}

func (a *itemRepositoryAdapter) CountDueByLearner(ctx context.Context, today time.Time) ([]store.LearnerDueCount, error) {
	return a.store.CountDueByLearner(ctx, today)
}

func (a *itemRepositoryAdapter) WithTx(tx *sql.Tx) ItemRepository {
	return &itemRepositoryAdapter{store: a.store.WithTx(tx), db: a.db}
}

func (a *itemRepositoryAdapter) DB() *sql.DB {
	return a.db
}

// NewAttemptRepositoryAdapter lets a store.ReviewAttemptStore serve as an AttemptRepository.
func NewAttemptRepositoryAdapter(attemptStore store.ReviewAttemptStore) AttemptRepository {
	return &attemptRepositoryAdapter{store: attemptStore}
}

type attemptRepositoryAdapter struct {
	store store.ReviewAttemptStore
}

func (a *attemptRepositoryAdapter) Create(ctx context.Context, attempt *domain.ReviewAttempt) error {
	return a.store.Create(ctx, attempt)
}

func (a *attemptRepositoryAdapter) GetByRequestID(
	ctx context.Context,
	learnerID, requestID uuid.UUID,
) (*domain.ReviewAttempt, error) {
	return a.store.GetByRequestID(ctx, learnerID, requestID)
}

func (a *attemptRepositoryAdapter) ListByLearner(
	ctx context.Context,
	learnerID uuid.UUID,
	limit int,
) ([]*domain.ReviewAttempt, error) {
	return a.store.ListByLearner(ctx, learnerID, limit)
}

func (a *attemptRepositoryAdapter) WithTx(tx *sql.Tx) AttemptRepository {
	return &attemptRepositoryAdapter{store: a.store.WithTx(tx)}
}
