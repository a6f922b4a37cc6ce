package review_test

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/snapvocab/snapvocab-api/internal/clock"
	"github.com/snapvocab/snapvocab-api/internal/domain"
	"github.com/snapvocab/snapvocab-api/internal/domain/srs"
	"github.com/snapvocab/snapvocab-api/internal/platform/logger"
	"github.com/snapvocab/snapvocab-api/internal/platform/sqlite"
	"github.com/snapvocab/snapvocab-api/internal/service/review"
	"github.com/snapvocab/snapvocab-api/internal/store"
	"github.com/snapvocab/snapvocab-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 6, 15, 10, 30, 0, 0, time.UTC)

type fixture struct {
	db       *sqlx.DB
	items    *sqlite.SQLiteVocabularyItemStore
	attempts *sqlite.SQLiteReviewAttemptStore
	clock    *clock.Fixed
	service  review.ReviewService
	logs     *logger.TestLogBuffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testdb.NewSQLiteDB(t)
	logs, log := logger.NewTestLogger(t)
	items := sqlite.NewSQLiteVocabularyItemStore(db, log)
	attempts := sqlite.NewSQLiteReviewAttemptStore(db, log)
	clk := clock.NewFixed(testNow)

	srsService, err := srs.NewDefaultService()
	require.NoError(t, err)

	svc := review.NewReviewService(
		review.NewItemRepositoryAdapter(items, db.DB),
		review.NewAttemptRepositoryAdapter(attempts),
		srsService,
		clk,
		review.SessionLimits{DefaultLimit: 5, MaxLimit: 10},
		log,
	)

	return &fixture{db: db, items: items, attempts: attempts, clock: clk, service: svc, logs: logs}
}

type itemOption func(*domain.VocabularyItem)

func withState(ef float64, interval, reps int) itemOption {
	return func(i *domain.VocabularyItem) {
		i.EasinessFactor = ef
		i.IntervalDays = interval
		i.Repetitions = reps
		i.CorrectStreak = reps
	}
}

func withNextReview(daysFromToday int) itemOption {
	return func(i *domain.VocabularyItem) {
		d := domain.DateOf(testNow).AddDate(0, 0, daysFromToday)
		i.NextReviewDate = &d
	}
}

func withReviewed() itemOption {
	return func(i *domain.VocabularyItem) {
		r := testNow.Add(-48 * time.Hour)
		i.LastReviewedAt = &r
	}
}

func withCreatedAt(t time.Time) itemOption {
	return func(i *domain.VocabularyItem) {
		i.CreatedAt = t
		i.UpdatedAt = t
	}
}

func (f *fixture) seed(t *testing.T, learnerID uuid.UUID, word string, opts ...itemOption) *domain.VocabularyItem {
	t.Helper()
	item, err := domain.NewVocabularyItem(learnerID, nil, word, "", "")
	require.NoError(t, err)
	for _, opt := range opts {
		opt(item)
	}
	require.NoError(t, f.items.Create(context.Background(), item))
	return item
}

func (f *fixture) countAttempts(t *testing.T, learnerID uuid.UUID) int {
	t.Helper()
	attempts, err := f.attempts.ListByLearner(context.Background(), learnerID, 0)
	require.NoError(t, err)
	return len(attempts)
}

func TestRecordAttempt_NewItemFirstGood(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	learnerID := uuid.New()
	item := f.seed(t, learnerID, "apple")

	ms := 2100
	result, err := f.service.RecordAttempt(context.Background(), review.RecordAttemptRequest{
		ItemID:         item.ID,
		LearnerID:      learnerID,
		Rating:         domain.RatingGood,
		QuizMode:       domain.QuizModeMultipleChoice,
		ResponseTimeMs: &ms,
	})
	require.NoError(t, err)

	assert.True(t, result.IsCorrect)
	assert.False(t, result.Replayed)
	assert.Equal(t, 4, result.Item.IntervalDays)
	assert.Equal(t, 1, result.Item.Repetitions)
	assert.Equal(t, 1, result.Item.CorrectStreak)
	assert.InDelta(t, 2.5, result.Item.EasinessFactor, 1e-9)
	require.NotNil(t, result.Item.NextReviewDate)
	assert.Equal(t, "2026-06-19", result.Item.NextReviewDate.Format(time.DateOnly))

	stored, err := f.items.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.IntervalDays)
	require.NotNil(t, stored.LastReviewedAt)
	assert.True(t, testNow.Equal(*stored.LastReviewedAt))

	attempts, err := f.attempts.ListByLearner(context.Background(), learnerID, 0)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, result.Attempt.ID, attempts[0].ID)
	assert.Equal(t, domain.QuizModeMultipleChoice, attempts[0].QuizMode)
	require.NotNil(t, attempts[0].ResponseTimeMs)
	assert.Equal(t, 2100, *attempts[0].ResponseTimeMs)
}

func TestRecordAttempt_ThirdSuccessGood(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	learnerID := uuid.New()
	item := f.seed(t, learnerID, "river", withState(2.6, 7, 2), withNextReview(0), withReviewed())

	result, err := f.service.RecordAttempt(context.Background(), review.RecordAttemptRequest{
		ItemID:    item.ID,
		LearnerID: learnerID,
		Rating:    domain.RatingGood,
	})
	require.NoError(t, err)

	assert.InDelta(t, 2.6, result.Item.EasinessFactor, 1e-9)
	assert.Equal(t, 18, result.Item.IntervalDays)
	assert.Equal(t, 3, result.Item.Repetitions)
	assert.False(t, result.Item.IsLearned)
}

func TestRecordAttempt_AgainResetsSchedule(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	learnerID := uuid.New()
	item := f.seed(t, learnerID, "cloud", withState(2.5, 15, 3), withNextReview(0), withReviewed())

	result, err := f.service.RecordAttempt(context.Background(), review.RecordAttemptRequest{
		ItemID:    item.ID,
		LearnerID: learnerID,
		Rating:    domain.RatingAgain,
	})
	require.NoError(t, err)

	assert.False(t, result.IsCorrect)
	assert.Equal(t, 1, result.Item.IntervalDays)
	assert.Equal(t, 0, result.Item.Repetitions)
	assert.Equal(t, 0, result.Item.CorrectStreak)
	assert.InDelta(t, 1.96, result.Item.EasinessFactor, 1e-9)
}

func TestRecordAttempt_ReachesLearned(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	learnerID := uuid.New()
	item := f.seed(t, learnerID, "mountain", withState(2.5, 10, 3), withNextReview(-1), withReviewed())

	result, err := f.service.RecordAttempt(context.Background(), review.RecordAttemptRequest{
		ItemID:    item.ID,
		LearnerID: learnerID,
		Rating:    domain.RatingGood,
	})
	require.NoError(t, err)
	assert.Equal(t, 25, result.Item.IntervalDays)
	assert.True(t, result.Item.IsLearned)

	due, err := f.service.DueItems(context.Background(), learnerID, review.DueItemsQuery{IncludeNew: true})
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestRecordAttempt_InvalidInput(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	learnerID := uuid.New()
	item := f.seed(t, learnerID, "salt")
	negative := -5

	tests := []struct {
		name    string
		req     review.RecordAttemptRequest
		wantErr error
	}{
		{
			name:    "rating zero",
			req:     review.RecordAttemptRequest{ItemID: item.ID, LearnerID: learnerID, Rating: 0},
			wantErr: review.ErrInvalidRating,
		},
		{
			name:    "rating five",
			req:     review.RecordAttemptRequest{ItemID: item.ID, LearnerID: learnerID, Rating: 5},
			wantErr: domain.ErrInvalidRating,
		},
		{
			name: "unknown quiz mode",
			req: review.RecordAttemptRequest{
				ItemID: item.ID, LearnerID: learnerID, Rating: domain.RatingGood, QuizMode: "crossword",
			},
			wantErr: review.ErrInvalidAttempt,
		},
		{
			name: "negative response time",
			req: review.RecordAttemptRequest{
				ItemID: item.ID, LearnerID: learnerID, Rating: domain.RatingGood, ResponseTimeMs: &negative,
			},
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.RecordAttempt(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Equal(t, 0, f.countAttempts(t, learnerID))
	stored, err := f.items.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.NextReviewDate)
}

func TestRecordAttempt_ItemNotFound(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.service.RecordAttempt(context.Background(), review.RecordAttemptRequest{
		ItemID:    uuid.New(),
		LearnerID: uuid.New(),
		Rating:    domain.RatingGood,
	})
	assert.ErrorIs(t, err, review.ErrItemNotFound)
}

func TestRecordAttempt_ForbiddenLeavesStateUntouched(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	owner, intruder := uuid.New(), uuid.New()
	item := f.seed(t, owner, "secret", withState(2.5, 4, 1), withNextReview(0), withReviewed())

	_, err := f.service.RecordAttempt(context.Background(), review.RecordAttemptRequest{
		ItemID:    item.ID,
		LearnerID: intruder,
		Rating:    domain.RatingEasy,
	})
	require.ErrorIs(t, err, review.ErrItemNotOwned)

	stored, err := f.items.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.IntervalDays)
	assert.Equal(t, 1, stored.Repetitions)
	assert.Equal(t, 0, f.countAttempts(t, owner))
	assert.Equal(t, 0, f.countAttempts(t, intruder))

	entries := f.logs.FindEntries(t, "learner attempted to review an item they do not own")
	require.Len(t, entries, 1)
	assert.Equal(t, slog.LevelWarn.String(), entries[0]["level"])
	assert.Equal(t, owner.String(), entries[0]["owner_id"])
}

func TestRecordAttempt_RequestIDReplay(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	learnerID := uuid.New()
	item := f.seed(t, learnerID, "bread")
	requestID := uuid.New()

	req := review.RecordAttemptRequest{
		ItemID:    item.ID,
		LearnerID: learnerID,
		Rating:    domain.RatingGood,
		RequestID: &requestID,
	}

	first, err := f.service.RecordAttempt(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	f.clock.AdvanceDays(1)
	second, err := f.service.RecordAttempt(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Attempt.ID, second.Attempt.ID)
	assert.Equal(t, first.Item.IntervalDays, second.Item.IntervalDays)
	assert.Equal(t, 1, second.Item.Repetitions)
	assert.Equal(t, 1, f.countAttempts(t, learnerID))

	other := f.seed(t, learnerID, "butter")
	req.ItemID = other.ID
	_, err = f.service.RecordAttempt(context.Background(), req)
	assert.ErrorIs(t, err, review.ErrRequestIDConflict)
}

func TestRecordAttempt_ConcurrentRatingsSerialize(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	learnerID := uuid.New()
	item := f.seed(t, learnerID, "parallel")

	const workers = 6
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.RecordAttempt(context.Background(), review.RecordAttemptRequest{
				ItemID:    item.ID,
				LearnerID: learnerID,
				Rating:    domain.RatingGood,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := f.items.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, workers, stored.Repetitions)
	assert.Equal(t, workers, stored.CorrectStreak)
	assert.Equal(t, workers, f.countAttempts(t, learnerID))
}

func TestRecordAttempt_PersistenceFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	learnerID := uuid.New()
	item := f.seed(t, learnerID, "fragile")
	require.NoError(t, f.db.Close())

	_, err := f.service.RecordAttempt(context.Background(), review.RecordAttemptRequest{
		ItemID:    item.ID,
		LearnerID: learnerID,
		Rating:    domain.RatingHard,
	})
	require.ErrorIs(t, err, review.ErrPersistence)

	var svcErr *review.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "record_attempt", svcErr.Operation)
}

// failingScheduleRepository fails every schedule write, including those made
// through repositories bound to a transaction.
type failingScheduleRepository struct {
	review.ItemRepository
	err error
}

func (r *failingScheduleRepository) UpdateSchedule(context.Context, *domain.VocabularyItem) error {
	return r.err
}

func (r *failingScheduleRepository) WithTx(tx *sql.Tx) review.ItemRepository {
	return &failingScheduleRepository{ItemRepository: r.ItemRepository.WithTx(tx), err: r.err}
}

func TestRecordAttempt_ScheduleWriteFailureRollsBackAttempt(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	learnerID := uuid.New()
	item := f.seed(t, learnerID, "rollback")

	srsService, err := srs.NewDefaultService()
	require.NoError(t, err)
	svc := review.NewReviewService(
		&failingScheduleRepository{
			ItemRepository: review.NewItemRepositoryAdapter(f.items, f.db.DB),
			err:            errors.New("disk full"),
		},
		review.NewAttemptRepositoryAdapter(f.attempts),
		srsService,
		f.clock,
		review.SessionLimits{},
		nil,
	)

	requestID := uuid.New()
	_, err = svc.RecordAttempt(context.Background(), review.RecordAttemptRequest{
		ItemID:    item.ID,
		LearnerID: learnerID,
		Rating:    domain.RatingGood,
		RequestID: &requestID,
	})
	require.ErrorIs(t, err, review.ErrPersistence)
	assert.ErrorContains(t, err, "disk full")

	assert.Equal(t, 0, f.countAttempts(t, learnerID), "attempt must not outlive the failed transaction")
	_, err = f.attempts.GetByRequestID(context.Background(), learnerID, requestID)
	assert.True(t, store.IsNotFoundError(err))

	stored, err := f.items.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.EasinessFactor, stored.EasinessFactor)
	assert.Zero(t, stored.IntervalDays)
	assert.Zero(t, stored.Repetitions)
	assert.Zero(t, stored.CorrectStreak)
	assert.Nil(t, stored.NextReviewDate)
	assert.Nil(t, stored.LastReviewedAt)

	// The same request succeeds once storage recovers.
	result, err := f.service.RecordAttempt(context.Background(), review.RecordAttemptRequest{
		ItemID:    item.ID,
		LearnerID: learnerID,
		Rating:    domain.RatingGood,
		RequestID: &requestID,
	})
	require.NoError(t, err)
	assert.False(t, result.Replayed)
	assert.Equal(t, 1, result.Item.Repetitions)
}

func TestDueItems_BackfillsNewItems(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	learnerID := uuid.New()
	base := testNow.Add(-72 * time.Hour)

	dueOld := f.seed(t, learnerID, "due-old", withState(2.5, 4, 1), withNextReview(-3), withReviewed(), withCreatedAt(base))
	dueToday := f.seed(t, learnerID, "due-today", withState(2.5, 4, 1), withNextReview(0), withReviewed(), withCreatedAt(base))
	unscheduled := f.seed(t, learnerID, "unscheduled", withCreatedAt(base.Add(time.Hour)))

	var fresh []*domain.VocabularyItem
	for i := 0; i < 5; i++ {
		fresh = append(fresh, f.seed(t, learnerID, "fresh", withNextReview(2),
			withCreatedAt(base.Add(time.Duration(i+2)*time.Hour))))
	}
	f.seed(t, learnerID, "future-reviewed", withState(2.5, 4, 1), withNextReview(3), withReviewed())
	f.seed(t, uuid.New(), "other-learner")

	due, err := f.service.DueItems(context.Background(), learnerID, review.DueItemsQuery{
		Limit:      limitOf(8),
		IncludeNew: true,
	})
	require.NoError(t, err)
	require.Len(t, due, 8)

	want := []uuid.UUID{unscheduled.ID, dueOld.ID, dueToday.ID}
	for i := len(fresh) - 1; i >= 0; i-- {
		want = append(want, fresh[i].ID)
	}
	got := make([]uuid.UUID, 0, len(due))
	for _, item := range due {
		got = append(got, item.ID)
	}
	assert.Equal(t, want, got)

	withoutNew, err := f.service.DueItems(context.Background(), learnerID, review.DueItemsQuery{Limit: limitOf(8)})
	require.NoError(t, err)
	assert.Len(t, withoutNew, 3)
}

func TestDueItems_Limits(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	learnerID := uuid.New()
	for i := 0; i < 12; i++ {
		f.seed(t, learnerID, "word")
	}

	tests := []struct {
		name  string
		limit *int
		want  int
	}{
		{"missing uses default", nil, 5},
		{"zero is empty", limitOf(0), 0},
		{"within bounds", limitOf(7), 7},
		{"clamped to max", limitOf(50), 10},
		{"negative is empty", limitOf(-1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			due, err := f.service.DueItems(context.Background(), learnerID, review.DueItemsQuery{Limit: tt.limit})
			require.NoError(t, err)
			assert.NotNil(t, due)
			assert.Len(t, due, tt.want)
		})
	}
}

func TestDueItems_ListFilter(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	learnerID := uuid.New()
	listID := uuid.New()

	inList, err := domain.NewVocabularyItem(learnerID, &listID, "listed", "", "")
	require.NoError(t, err)
	require.NoError(t, f.items.Create(context.Background(), inList))
	f.seed(t, learnerID, "unlisted")

	due, err := f.service.DueItems(context.Background(), learnerID, review.DueItemsQuery{ListID: &listID})
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, inList.ID, due[0].ID)
}

func TestPreviewNextReview(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	learnerID := uuid.New()
	item := f.seed(t, learnerID, "preview", withState(2.5, 4, 1), withNextReview(0), withReviewed())

	result, err := f.service.PreviewNextReview(context.Background(), learnerID, item.ID, domain.RatingEasy)
	require.NoError(t, err)
	assert.Equal(t, 14, result.IntervalDays)
	assert.InDelta(t, 2.6, result.EasinessFactor, 1e-9)

	stored, err := f.items.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.IntervalDays)
	assert.Equal(t, 0, f.countAttempts(t, learnerID))

	_, err = f.service.PreviewNextReview(context.Background(), learnerID, item.ID, domain.Rating(9))
	assert.ErrorIs(t, err, review.ErrInvalidRating)

	_, err = f.service.PreviewNextReview(context.Background(), uuid.New(), item.ID, domain.RatingGood)
	assert.ErrorIs(t, err, review.ErrItemNotOwned)

	_, err = f.service.PreviewNextReview(context.Background(), learnerID, uuid.New(), domain.RatingGood)
	assert.ErrorIs(t, err, review.ErrItemNotFound)
}

func TestListAttemptsAndItems(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	learnerID := uuid.New()
	a := f.seed(t, learnerID, "a")
	f.seed(t, learnerID, "b")

	for _, rating := range []domain.Rating{domain.RatingGood, domain.RatingHard, domain.RatingAgain} {
		f.clock.Advance(time.Minute)
		_, err := f.service.RecordAttempt(context.Background(), review.RecordAttemptRequest{
			ItemID: a.ID, LearnerID: learnerID, Rating: rating,
		})
		require.NoError(t, err)
	}

	attempts, err := f.service.ListAttempts(context.Background(), learnerID, 2)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, domain.RatingAgain, attempts[0].Rating)
	assert.Equal(t, domain.RatingHard, attempts[1].Rating)

	items, err := f.service.ListItems(context.Background(), learnerID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestNewReviewService_PanicsOnNilDependencies(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() {
		review.NewReviewService(nil, nil, nil, nil, review.SessionLimits{}, nil)
	})
}

func TestServiceError(t *testing.T) {
	t.Parallel()
	err := &review.ServiceError{Operation: "due_items", Message: "failed", Err: store.ErrNotFound}
	assert.Equal(t, "due_items operation failed: failed: entity not found", err.Error())
	assert.ErrorIs(t, err, store.ErrNotFound)

	bare := &review.ServiceError{Operation: "due_items", Message: "failed"}
	assert.Equal(t, "due_items operation failed: failed", bare.Error())
}

func limitOf(n int) *int {
	return &n
}
