package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/snapvocab/snapvocab-api/internal/domain"
	"github.com/snapvocab/snapvocab-api/internal/platform/logger"
	"github.com/snapvocab/snapvocab-api/internal/store"
)

var attemptColumns = []string{
	"id", "item_id", "learner_id", "session_id", "quiz_mode", "rating",
	"is_correct", "response_time_ms", "request_id", "created_at",
}

// PostgresReviewAttemptStore implements the store.ReviewAttemptStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReviewAttemptStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewAttemptStore creates a new PostgreSQL implementation of the
// ReviewAttemptStore interface. If logger is nil, a default logger will be used.
func NewPostgresReviewAttemptStore(db store.DBTX, logger *slog.Logger) *PostgresReviewAttemptStore {
	if db == nil {
		// ALLOW-PANIC: constructor misuse is a programming error
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewAttemptStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_attempt_store")),
	}
}

// Ensure PostgresReviewAttemptStore implements store.ReviewAttemptStore interface
var _ store.ReviewAttemptStore = (*PostgresReviewAttemptStore)(nil)

// WithTx implements store.ReviewAttemptStore.WithTx
func (s *PostgresReviewAttemptStore) WithTx(tx *sql.Tx) store.ReviewAttemptStore {
	return &PostgresReviewAttemptStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.ReviewAttemptStore.Create
func (s *PostgresReviewAttemptStore) Create(ctx context.Context, attempt *domain.ReviewAttempt) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := attempt.Validate(); err != nil {
		log.Warn("review attempt validation failed during create",
			slog.String("error", err.Error()),
			slog.String("attempt_id", attempt.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query, args, err := psql.Insert("review_attempts").
		Columns(attemptColumns...).
		Values(
			attempt.ID, attempt.ItemID, attempt.LearnerID, nullUUID(attempt.SessionID),
			string(attempt.QuizMode), int(attempt.Rating), attempt.IsCorrect,
			nullInt(attempt.ResponseTimeMs), nullUUID(attempt.RequestID), attempt.CreatedAt.UTC(),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if IsUniqueViolation(err) {
			log.Debug("duplicate request id for review attempt",
				slog.String("learner_id", attempt.LearnerID.String()))
			return fmt.Errorf("%w: %v", store.ErrDuplicateRequestID, err)
		}
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: vocabulary item %s not found", store.ErrInvalidEntity, attempt.ItemID)
		}
		log.Error("failed to create review attempt",
			slog.String("error", err.Error()),
			slog.String("item_id", attempt.ItemID.String()))
		return MapError(err)
	}

	log.Debug("review attempt recorded",
		slog.String("attempt_id", attempt.ID.String()),
		slog.String("item_id", attempt.ItemID.String()),
		slog.String("rating", attempt.Rating.String()))
	return nil
}

// GetByRequestID implements store.ReviewAttemptStore.GetByRequestID
func (s *PostgresReviewAttemptStore) GetByRequestID(
	ctx context.Context,
	learnerID, requestID uuid.UUID,
) (*domain.ReviewAttempt, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.Select(attemptColumns...).
		From("review_attempts").
		Where(squirrel.Eq{"learner_id": learnerID, "request_id": requestID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	attempt, err := scanAttempt(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAttemptNotFound
		}
		log.Error("failed to get review attempt by request id",
			slog.String("error", err.Error()),
			slog.String("request_id", requestID.String()))
		return nil, MapError(err)
	}

	return attempt, nil
}

// ListByLearner implements store.ReviewAttemptStore.ListByLearner
func (s *PostgresReviewAttemptStore) ListByLearner(
	ctx context.Context,
	learnerID uuid.UUID,
	limit int,
) ([]*domain.ReviewAttempt, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	builder := psql.Select(attemptColumns...).
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

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list review attempts",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	attempts := make([]*domain.ReviewAttempt, 0)
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}

	return attempts, MapError(rows.Err())
}

func scanAttempt(row rowScanner) (*domain.ReviewAttempt, error) {
	var (
		attempt   domain.ReviewAttempt
		sessionID uuid.NullUUID
		requestID uuid.NullUUID
		quizMode  string
		rating    int
		response  sql.NullInt64
	)

	err := row.Scan(
		&attempt.ID,
		&attempt.ItemID,
		&attempt.LearnerID,
		&sessionID,
		&quizMode,
		&rating,
		&attempt.IsCorrect,
		&response,
		&requestID,
		&attempt.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	attempt.QuizMode = domain.QuizMode(quizMode)
	attempt.Rating = domain.Rating(rating)
	attempt.CreatedAt = attempt.CreatedAt.UTC()
	if sessionID.Valid {
		id := sessionID.UUID
		attempt.SessionID = &id
	}
	if requestID.Valid {
		id := requestID.UUID
		attempt.RequestID = &id
	}
	if response.Valid {
		ms := int(response.Int64)
		attempt.ResponseTimeMs = &ms
	}

	return &attempt, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
