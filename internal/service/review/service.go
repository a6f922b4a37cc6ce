package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/snapvocab/snapvocab-api/internal/domain"
)

// RecordAttemptRequest carries one rating submitted by a learner.
type RecordAttemptRequest struct {
	ItemID         uuid.UUID
	LearnerID      uuid.UUID
	Rating         domain.Rating
	SessionID      *uuid.UUID
	QuizMode       domain.QuizMode
	ResponseTimeMs *int
	// RequestID makes the call idempotent per learner when set.
	RequestID *uuid.UUID
}

// RecordAttemptResult is the outcome of RecordAttempt.
type RecordAttemptResult struct {
	Item      *domain.VocabularyItem
	Attempt   *domain.ReviewAttempt
	IsCorrect bool
	// Replayed is true when RequestID matched an earlier attempt and nothing
	// was written.
	Replayed bool
}

// DueItemsQuery selects the learner's review queue.
type DueItemsQuery struct {
	// Limit caps the queue length. Nil uses the configured default, zero or
	// less yields an empty queue, and values above the configured maximum are
	// clamped.
	Limit      *int
	IncludeNew bool
	ListID     *uuid.UUID
}

// SessionLimits bounds the size of a due-review queue.
type SessionLimits struct {
	DefaultLimit int
	MaxLimit     int
}

// ReviewService is the application boundary for reviewing vocabulary.
type ReviewService interface {
	// RecordAttempt validates the rating, recalculates the item's schedule and
	// stores the attempt together with the new schedule in one transaction.
	//
	// Errors:
	//   - ErrInvalidRating, ErrInvalidAttempt: bad input, nothing was read
	//   - ErrItemNotFound: the item does not exist
	//   - ErrItemNotOwned: the item belongs to another learner
	//   - ErrRequestIDConflict: the request id was used for a different item
	//   - ErrPersistence (as *ServiceError): storage failed, nothing was written
	RecordAttempt(ctx context.Context, req RecordAttemptRequest) (*RecordAttemptResult, error)

	// DueItems returns the learner's due queue for today.
	DueItems(ctx context.Context, learnerID uuid.UUID, query DueItemsQuery) ([]*domain.VocabularyItem, error)

	// PreviewNextReview returns the schedule a rating would produce without
	// writing anything.
	PreviewNextReview(
		ctx context.Context,
		learnerID, itemID uuid.UUID,
		rating domain.Rating,
	) (domain.SrsResult, error)

	// ListAttempts returns the learner's attempts, newest first. A limit of
	// zero returns all of them.
	ListAttempts(ctx context.Context, learnerID uuid.UUID, limit int) ([]*domain.ReviewAttempt, error)

	// ListItems returns all of the learner's items.
	ListItems(ctx context.Context, learnerID uuid.UUID) ([]*domain.VocabularyItem, error)
}

// Common error types for ReviewService
var (
	// ErrInvalidRating is returned for ratings outside 1..4.
	ErrInvalidRating = fmt.Errorf("review: %w", domain.ErrInvalidRating)

	// ErrInvalidAttempt is returned when quiz mode or response time is invalid.
	ErrInvalidAttempt = fmt.Errorf("review: invalid attempt: %w", domain.ErrValidation)

	// ErrItemNotFound indicates that the vocabulary item does not exist.
	ErrItemNotFound = errors.New("vocabulary item not found")

	// ErrItemNotOwned indicates that the item belongs to a different learner.
	ErrItemNotOwned = errors.New("forbidden: vocabulary item not owned by learner")

	// ErrRequestIDConflict indicates that a request id was reused for another item.
	ErrRequestIDConflict = errors.New("request id already used for a different item")

	// ErrPersistence indicates a storage failure. The operation can be retried.
	ErrPersistence = errors.New("persistence failure")
)

// ServiceError wraps errors from the review service with the failing operation.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "record_attempt", "due_items")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// newPersistenceError wraps a storage error so it matches ErrPersistence.
func newPersistenceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       fmt.Errorf("%w: %w", ErrPersistence, err),
	}
}
