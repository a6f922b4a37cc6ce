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

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

var itemColumns = []string{
	"id", "learner_id", "list_id", "word", "translation", "image_url",
	"easiness_factor", "interval_days", "repetitions", "correct_streak",
	"next_review_date", "last_reviewed_at", "is_learned", "created_at", "updated_at",
}

// itemRow is the column layout of vocabulary_items.
type itemRow struct {
	ID             uuid.UUID     `db:"id"`
	LearnerID      uuid.UUID     `db:"learner_id"`
	ListID         uuid.NullUUID `db:"list_id"`
	Word           string        `db:"word"`
	Translation    string        `db:"translation"`
	ImageURL       string        `db:"image_url"`
	EasinessFactor float64       `db:"easiness_factor"`
	IntervalDays   int           `db:"interval_days"`
	Repetitions    int           `db:"repetitions"`
	CorrectStreak  int           `db:"correct_streak"`
	NextReviewDate sql.NullTime  `db:"next_review_date"`
	LastReviewedAt sql.NullTime  `db:"last_reviewed_at"`
	IsLearned      bool          `db:"is_learned"`
	CreatedAt      time.Time     `db:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

func (r itemRow) toDomain() *domain.VocabularyItem {
	item := &domain.VocabularyItem{
		ID:             r.ID,
		LearnerID:      r.LearnerID,
		Word:           r.Word,
		Translation:    r.Translation,
		ImageURL:       r.ImageURL,
		EasinessFactor: r.EasinessFactor,
		IntervalDays:   r.IntervalDays,
		Repetitions:    r.Repetitions,
		CorrectStreak:  r.CorrectStreak,
		IsLearned:      r.IsLearned,
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
	}
	if r.ListID.Valid {
		id := r.ListID.UUID
		item.ListID = &id
	}
	if r.NextReviewDate.Valid {
		d := domain.DateOf(r.NextReviewDate.Time.UTC())
		item.NextReviewDate = &d
	}
	if r.LastReviewedAt.Valid {
		t := r.LastReviewedAt.Time.UTC()
		item.LastReviewedAt = &t
	}
	return item
}

// SQLiteVocabularyItemStore implements store.VocabularyItemStore on SQLite.
type SQLiteVocabularyItemStore struct {
	db     sqlx.ExtContext
	mapper *reflectx.Mapper
	logger *slog.Logger
}

// NewSQLiteVocabularyItemStore creates a store backed by db. If logger is nil,
// the default logger is used.
func NewSQLiteVocabularyItemStore(db *sqlx.DB, logger *slog.Logger) *SQLiteVocabularyItemStore {
	if db == nil {
		// ALLOW-PANIC: constructor misuse is a programming error
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SQLiteVocabularyItemStore{
		db:     db,
		mapper: db.Mapper,
		logger: logger.With(slog.String("component", "vocabulary_item_store")),
	}
}

var _ store.VocabularyItemStore = (*SQLiteVocabularyItemStore)(nil)

// WithTx implements store.VocabularyItemStore.WithTx
func (s *SQLiteVocabularyItemStore) WithTx(tx *sql.Tx) store.VocabularyItemStore {
	return &SQLiteVocabularyItemStore{
		db:     &sqlx.Tx{Tx: tx, Mapper: s.mapper},
		mapper: s.mapper,
		logger: s.logger,
	}
}

// Create implements store.VocabularyItemStore.Create
func (s *SQLiteVocabularyItemStore) Create(ctx context.Context, item *domain.VocabularyItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		log.Warn("vocabulary item validation failed during create",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query, args, err := sqlBuilder.Insert("vocabulary_items").
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
			slog.String("item_id", item.ID.String()))
		return MapError(err)
	}

	log.Debug("vocabulary item created", slog.String("item_id", item.ID.String()))
	return nil
}

// GetByID implements store.VocabularyItemStore.GetByID
func (s *SQLiteVocabularyItemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error) {
	return s.get(ctx, id)
}

// GetForUpdate implements store.VocabularyItemStore.GetForUpdate
// SQLite has no row locks; the write lock taken by BEGIN IMMEDIATE already
// serializes concurrent transactions, so this is a plain read.
func (s *SQLiteVocabularyItemStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error) {
	return s.get(ctx, id)
}

func (s *SQLiteVocabularyItemStore) get(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := sqlBuilder.Select(itemColumns...).
		From("vocabulary_items").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var row itemRow
	if err := sqlx.GetContext(ctx, s.db, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("vocabulary item not found", slog.String("item_id", id.String()))
			return nil, store.ErrItemNotFound
		}
		log.Error("failed to get vocabulary item",
			slog.String("error", err.Error()),
			slog.String("item_id", id.String()))
		return nil, MapError(err)
	}

	return row.toDomain(), nil
}

// ListByLearner implements store.VocabularyItemStore.ListByLearner
func (s *SQLiteVocabularyItemStore) ListByLearner(
	ctx context.Context,
	learnerID uuid.UUID,
	filter store.ItemFilter,
) ([]*domain.VocabularyItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	builder := sqlBuilder.Select(itemColumns...).
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

	var rows []itemRow
	if err := sqlx.SelectContext(ctx, s.db, &rows, query, args...); err != nil {
		log.Error("failed to list vocabulary items",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, MapError(err)
	}

	items := make([]*domain.VocabularyItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items, nil
}

// UpdateSchedule implements store.VocabularyItemStore.UpdateSchedule
func (s *SQLiteVocabularyItemStore) UpdateSchedule(ctx context.Context, item *domain.VocabularyItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.State().Validate(); err != nil {
		log.Warn("schedule validation failed during update",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query, args, err := sqlBuilder.Update("vocabulary_items").
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

	return checkRowsAffected(result, store.ErrItemNotFound)
}

// CountDueByLearner implements store.VocabularyItemStore.CountDueByLearner
func (s *SQLiteVocabularyItemStore) CountDueByLearner(ctx context.Context, today time.Time) ([]store.LearnerDueCount, error) {
	query, args, err := sqlBuilder.Select("learner_id", "COUNT(*) AS due_count").
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

	var rows []struct {
		LearnerID uuid.UUID `db:"learner_id"`
		DueCount  int       `db:"due_count"`
	}
	if err := sqlx.SelectContext(ctx, s.db, &rows, query, args...); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).
			Error("failed to count due items", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	counts := make([]store.LearnerDueCount, 0, len(rows))
	for _, r := range rows {
		counts = append(counts, store.LearnerDueCount{LearnerID: r.LearnerID, DueCount: r.DueCount})
	}
	return counts, nil
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
