package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/snapvocab/snapvocab-api/internal/domain"
	"github.com/snapvocab/snapvocab-api/internal/platform/logger"
	"github.com/snapvocab/snapvocab-api/internal/store"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var itemColumns = []string{
	"id", "learner_id", "list_id", "word", "translation", "image_url",
	"easiness_factor", "interval_days", "repetitions", "correct_streak",
	"next_review_date", "last_reviewed_at", "is_learned", "created_at", "updated_at",
}

// PostgresVocabularyItemStore implements the store.VocabularyItemStore interface
// using a PostgreSQL database as the storage backend.
type PostgresVocabularyItemStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresVocabularyItemStore creates a new PostgreSQL implementation of the
// VocabularyItemStore interface. If logger is nil, a default logger will be used.
func NewPostgresVocabularyItemStore(db store.DBTX, logger *slog.Logger) *PostgresVocabularyItemStore {
	if db == nil {
		// ALLOW-PANIC: constructor misuse is a programming error
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresVocabularyItemStore{
		db:     db,
		logger: logger.With(slog.String("component", "vocabulary_item_store")),
	}
}

// Ensure PostgresVocabularyItemStore implements store.VocabularyItemStore interface
var _ store.VocabularyItemStore = (*PostgresVocabularyItemStore)(nil)

// WithTx implements store.VocabularyItemStore.WithTx
func (s *PostgresVocabularyItemStore) WithTx(tx *sql.Tx) store.VocabularyItemStore {
	return &PostgresVocabularyItemStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.VocabularyItemStore.Create
func (s *PostgresVocabularyItemStore) Create(ctx context.Context, item *domain.VocabularyItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		log.Warn("vocabulary item validation failed during create",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query, args, err := psql.Insert("vocabulary_items").
		Columns(itemColumns...).
		Values(
			item.ID, item.LearnerID, nullUUID(item.ListID), item.Word, item.Translation, item.ImageURL,
			item.EasinessFactor, item.IntervalDays, item.Repetitions, item.CorrectStreak,
			nullTime(item.NextReviewDate), nullTime(item.LastReviewedAt), item.IsLearned,
			item.CreatedAt.UTC(), item.UpdatedAt.UTC(),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to create vocabulary item",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()),
			slog.String("learner_id", item.LearnerID.String()))
		return MapError(err)
	}

	log.Debug("vocabulary item created",
		slog.String("item_id", item.ID.String()),
		slog.String("learner_id", item.LearnerID.String()))
	return nil
}

// GetByID implements store.VocabularyItemStore.GetByID
func (s *PostgresVocabularyItemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error) {
	return s.get(ctx, id, false)
}

// GetForUpdate implements store.VocabularyItemStore.GetForUpdate
// It issues SELECT ... FOR UPDATE, so concurrent recorders for the same item
// queue behind the first transaction.
func (s *PostgresVocabularyItemStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error) {
	return s.get(ctx, id, true)
}

func (s *PostgresVocabularyItemStore) get(ctx context.Context, id uuid.UUID, forUpdate bool) (*domain.VocabularyItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	builder := psql.Select(itemColumns...).
		From("vocabulary_items").
		Where(squirrel.Eq{"id": id})
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	item, err := scanItem(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("vocabulary item not found", slog.String("item_id", id.String()))
			return nil, store.ErrItemNotFound
		}
		log.Error("failed to get vocabulary item",
			slog.String("error", err.Error()),
			slog.String("item_id", id.String()),
			slog.Bool("for_update", forUpdate))
		return nil, MapError(err)
	}

	return item, nil
}

// ListByLearner implements store.VocabularyItemStore.ListByLearner
func (s *PostgresVocabularyItemStore) ListByLearner(
	ctx context.Context,
	learnerID uuid.UUID,
	filter store.ItemFilter,
) ([]*domain.VocabularyItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	builder := psql.Select(itemColumns...).
		From("vocabulary_items").
		Where(squirrel.Eq{"learner_id": learnerID}).
		OrderBy("created_at ASC", "id ASC")
	if filter.ListID != nil {
		builder = builder.Where(squirrel.Eq{"list_id": *filter.ListID})
	}
	if filter.ExcludeLearned {
		builder = builder.Where(squirrel.Eq{"is_learned": false})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list vocabulary items",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]*domain.VocabularyItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			log.Error("failed to scan vocabulary item row", slog.String("error", err.Error()))
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Debug("listed vocabulary items",
		slog.String("learner_id", learnerID.String()),
		slog.Int("count", len(items)))
	return items, nil
}

// UpdateSchedule implements store.VocabularyItemStore.UpdateSchedule
func (s *PostgresVocabularyItemStore) UpdateSchedule(ctx context.Context, item *domain.VocabularyItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.State().Validate(); err != nil {
		log.Warn("schedule validation failed during update",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query, args, err := psql.Update("vocabulary_items").
		Set("easiness_factor", item.EasinessFactor).
		Set("interval_days", item.IntervalDays).
		Set("repetitions", item.Repetitions).
		Set("correct_streak", item.CorrectStreak).
		Set("next_review_date", nullTime(item.NextReviewDate)).
		Set("last_reviewed_at", nullTime(item.LastReviewedAt)).
		Set("is_learned", item.IsLearned).
		Set("updated_at", item.UpdatedAt.UTC()).
		Where(squirrel.Eq{"id": item.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to update vocabulary item schedule",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrItemNotFound); err != nil {
		return err
	}

	log.Debug("vocabulary item schedule updated",
		slog.String("item_id", item.ID.String()),
		slog.Int("interval_days", item.IntervalDays),
		slog.Bool("is_learned", item.IsLearned))
	return nil
}

// CountDueByLearner implements store.VocabularyItemStore.CountDueByLearner
func (s *PostgresVocabularyItemStore) CountDueByLearner(
	ctx context.Context,
	today time.Time,
) ([]store.LearnerDueCount, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.Select("learner_id", "COUNT(*)").
		From("vocabulary_items").
		Where(squirrel.Eq{"is_learned": false}).
		Where(squirrel.Or{
			squirrel.Eq{"next_review_date": nil},
			squirrel.LtOrEq{"next_review_date": domain.DateOf(today)},
		}).
		GroupBy("learner_id").
		OrderBy("learner_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to count due items", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var counts []store.LearnerDueCount
	for rows.Next() {
		var c store.LearnerDueCount
		if err := rows.Scan(&c.LearnerID, &c.DueCount); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}

	return counts, MapError(rows.Err())
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.VocabularyItem, error) {
	var (
		item       domain.VocabularyItem
		listID     uuid.NullUUID
		nextReview sql.NullTime
		reviewedAt sql.NullTime
	)

	err := row.Scan(
		&item.ID,
		&item.LearnerID,
		&listID,
		&item.Word,
		&item.Translation,
		&item.ImageURL,
		&item.EasinessFactor,
		&item.IntervalDays,
		&item.Repetitions,
		&item.CorrectStreak,
		&nextReview,
		&reviewedAt,
		&item.IsLearned,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if listID.Valid {
		id := listID.UUID
		item.ListID = &id
	}
	if nextReview.Valid {
		d := domain.DateOf(nextReview.Time)
		item.NextReviewDate = &d
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time.UTC()
		item.LastReviewedAt = &t
	}
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()

	return &item, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
