package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/snapvocab/snapvocab-api/internal/domain"
	"github.com/snapvocab/snapvocab-api/internal/service/review"
)

// MockReviewService implements review.ReviewService for testing
type MockReviewService struct {
	RecordAttemptFn     func(ctx context.Context, req review.RecordAttemptRequest) (*review.RecordAttemptResult, error)
	DueItemsFn          func(ctx context.Context, learnerID uuid.UUID, query review.DueItemsQuery) ([]*domain.VocabularyItem, error)
	PreviewNextReviewFn func(ctx context.Context, learnerID, itemID uuid.UUID, rating domain.Rating) (domain.SrsResult, error)
	ListAttemptsFn      func(ctx context.Context, learnerID uuid.UUID, limit int) ([]*domain.ReviewAttempt, error)
	ListItemsFn         func(ctx context.Context, learnerID uuid.UUID) ([]*domain.VocabularyItem, error)

	// Default response values
	Result   *review.RecordAttemptResult
	Items    []*domain.VocabularyItem
	Attempts []*domain.ReviewAttempt
	Preview  domain.SrsResult
	Err      error

	mu                 sync.Mutex
	RecordAttemptCalls []review.RecordAttemptRequest
	DueItemsCalls      []review.DueItemsQuery
	PreviewCalls       []domain.Rating
	LearnerIDs         []uuid.UUID
}

var _ review.ReviewService = (*MockReviewService)(nil)

// NewMockReviewServiceWithError returns a mock whose every method fails with err.
func NewMockReviewServiceWithError(err error) *MockReviewService {
	return &MockReviewService{Err: err}
}

func (m *MockReviewService) track(learnerID uuid.UUID, record func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LearnerIDs = append(m.LearnerIDs, learnerID)
	if record != nil {
		record()
	}
}

// RecordAttempt implements the review.ReviewService interface
func (m *MockReviewService) RecordAttempt(
	ctx context.Context,
	req review.RecordAttemptRequest,
) (*review.RecordAttemptResult, error) {
	m.track(req.LearnerID, func() { m.RecordAttemptCalls = append(m.RecordAttemptCalls, req) })

	if m.RecordAttemptFn != nil {
		return m.RecordAttemptFn(ctx, req)
	}
	return m.Result, m.Err
}

// DueItems implements the review.ReviewService interface
func (m *MockReviewService) DueItems(
	ctx context.Context,
	learnerID uuid.UUID,
	query review.DueItemsQuery,
) ([]*domain.VocabularyItem, error) {
	m.track(learnerID, func() { m.DueItemsCalls = append(m.DueItemsCalls, query) })

	if m.DueItemsFn != nil {
		return m.DueItemsFn(ctx, learnerID, query)
	}
	return m.Items, m.Err
}

// PreviewNextReview implements the review.ReviewService interface
func (m *MockReviewService) PreviewNextReview(
	ctx context.Context,
	learnerID, itemID uuid.UUID,
	rating domain.Rating,
) (domain.SrsResult, error) {
	m.track(learnerID, func() { m.PreviewCalls = append(m.PreviewCalls, rating) })

	if m.PreviewNextReviewFn != nil {
		return m.PreviewNextReviewFn(ctx, learnerID, itemID, rating)
	}
	return m.Preview, m.Err
}

// ListAttempts implements the review.ReviewService interface
func (m *MockReviewService) ListAttempts(
	ctx context.Context,
	learnerID uuid.UUID,
	limit int,
) ([]*domain.ReviewAttempt, error) {
	m.track(learnerID, nil)

	if m.ListAttemptsFn != nil {
		return m.ListAttemptsFn(ctx, learnerID, limit)
	}
	return m.Attempts, m.Err
}

// ListItems implements the review.ReviewService interface
func (m *MockReviewService) ListItems(ctx context.Context, learnerID uuid.UUID) ([]*domain.VocabularyItem, error) {
	m.track(learnerID, nil)

	if m.ListItemsFn != nil {
		return m.ListItemsFn(ctx, learnerID)
	}
	return m.Items, m.Err
}

// Calls returns the number of recorded calls across all methods.
func (m *MockReviewService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.LearnerIDs)
}
