package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/reflectx"
	"github.com/snapvocab/snapvocab-api/internal/domain"
	"github.com/snapvocab/snapvocab-api/internal/platform/logger"
	"github.com/snapvocab/snapvocab-api/internal/store"
)

var attemptColumns = []string{
	"id", "item_id", "learner_id", "session_id", "quiz_mode", "rating",
	"is_correct", "response_time_ms", "request_id", "created_at",
}

type attemptRow struct {
	ID             uuid.UUID     `db:"id"`
	ItemID         uuid.UUID     `db:"item_id"`
	LearnerID      uuid.UUID     `db:"learner_id"`
	SessionID      uuid.NullUUID `db:"session_id"`
	QuizMode       string        `db:"quiz_mode"`
	Rating         int           `db:"rating"`
	IsCorrect      bool          `db:"is_correct"`
	ResponseTimeMs sql.NullInt64 `db:"response_time_ms"`
	RequestID      uuid.NullUUID `db:"request_id"`
	CreatedAt      time.Time     `db:"created_at"`
}

func (r attemptRow) toDomain() *domain.ReviewAttempt {
	attempt := &domain.ReviewAttempt{
		ID:        r.ID,
		ItemID:    r.ItemID,
		LearnerID: r.LearnerID,
		QuizMode:  domain.QuizMode(r.QuizMode),
		Rating:    domain.Rating(r.Rating),
		IsCorrect: r.IsCorrect,
		CreatedAt: r.CreatedAt.UTC(),
	}
	if r.SessionID.Valid {
		id := r.SessionID.UUID
		attempt.SessionID = &id
	}
	if r.RequestID.Valid {
		id := r.RequestID.UUID
		attempt.RequestID = &id
	}
	if r.ResponseTimeMs.Valid {
		ms := int(r.ResponseTimeMs.Int64)
		attempt.ResponseTimeMs = &ms
	}
	return attempt
}

// SQLiteReviewAttemptStore implements store.ReviewAttemptStore on SQLite.
type SQLiteReviewAttemptStore struct {
	db     sqlx.ExtContext
	mapper *reflectx.Mapper
	logger *slog.Logger
}

// NewSQLiteReviewAttemptStore creates a store backed by db. If logger is nil,
// the default logger is used.
func NewSQLiteReviewAttemptStore(db *sqlx.DB, logger *slog.Logger) *SQLiteReviewAttemptStore {
	if db == nil {
		// ALLOW-PANIC: constructor misuse is a programming error
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SQLiteReviewAttemptStore{
		db:     db,
		mapper: db.Mapper,
		logger: logger.With(slog.String("component", "review_attempt_store")),
	}
}

var _ store.ReviewAttemptStore = (*SQLiteReviewAttemptStore)(nil)

// WithTx implements store.ReviewAttemptStore.WithTx
func (s *SQLiteReviewAttemptStore) WithTx(tx *sql.Tx) store.ReviewAttemptStore {
	return &SQLiteReviewAttemptStore{
		db:     &sqlx.Tx{Tx: tx, Mapper: s.mapper},
		mapper: s.mapper,
		logger: s.logger,
	}
}

// Create implements store.ReviewAttemptStore.Create
func (s *SQLiteReviewAttemptStore) Create(ctx context.Context, attempt *domain.ReviewAttempt) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := attempt.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	var responseTime sql.NullInt64
	if attempt.ResponseTimeMs != nil {
		responseTime = sql.NullInt64{Int64: int64(*attempt.ResponseTimeMs), Valid: true}
	}

	query, args, err := sqlBuilder.Insert("review_attempts").
		Columns(attemptColumns...).
		Values(
			attempt.ID, attempt.ItemID, attempt.LearnerID, nullUUID(attempt.SessionID),
			string(attempt.QuizMode), int(attempt.Rating), attempt.IsCorrect,
			responseTime, nullUUID(attempt.RequestID), attempt.CreatedAt.UTC(),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		switch {
		case IsUniqueViolation(err):
			return fmt.Errorf("%w: %v", store.ErrDuplicateRequestID, err)
		case IsForeignKeyViolation(err):
			return fmt.Errorf("%w: vocabulary item %s not found", store.ErrInvalidEntity, attempt.ItemID)
		}
		log.Error("failed to create review attempt",
			slog.String("error", err.Error()),
			slog.String("item_id", attempt.ItemID.String()))
		return MapError(err)
	}

	return nil
}

// GetByRequestID implements store.ReviewAttemptStore.GetByRequestID
func (s *SQLiteReviewAttemptStore) GetByRequestID(
	ctx context.Context,
	learnerID, requestID uuid.UUID,
) (*domain.ReviewAttempt, error) {
	query, args, err := sqlBuilder.Select(attemptColumns...).
		From("review_attempts").
		Where(squirrel.Eq{"learner_id": learnerID, "request_id": requestID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var row attemptRow
	if err := sqlx.GetContext(ctx, s.db, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAttemptNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get review attempt by request id",
			slog.String("error", err.Error()),
			slog.String("request_id", requestID.String()))
		return nil, MapError(err)
	}

	return row.toDomain(), nil
}

// ListByLearner implements store.ReviewAttemptStore.ListByLearner
func (s *SQLiteReviewAttemptStore) ListByLearner(
	ctx context.Context,
	learnerID uuid.UUID,
	limit int,
) ([]*domain.ReviewAttempt, error) {
	builder := sqlBuilder.Select(attemptColumns...).
		From("review_attempts").
		Where(squirrel.Eq{"learner_id": learnerID}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	var rows []attemptRow
	if err := sqlx.SelectContext(ctx, s.db, &rows, query, args...); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list review attempts",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, MapError(err)
	}

	attempts := make([]*domain.ReviewAttempt, 0, len(rows))
	for _, row := range rows {
		attempts = append(attempts, row.toDomain())
	}
	return attempts, nil
}
