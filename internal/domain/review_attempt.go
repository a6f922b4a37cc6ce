package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Review attempt validation errors
var (
	// ErrAttemptIDEmpty is returned when an attempt ID is empty or nil.
	ErrAttemptIDEmpty = errors.New("attempt ID cannot be empty")

	// ErrAttemptItemIDEmpty is returned when an attempt has no item.
	ErrAttemptItemIDEmpty = errors.New("attempt item ID cannot be empty")

	// ErrAttemptLearnerIDEmpty is returned when an attempt has no learner.
	ErrAttemptLearnerIDEmpty = errors.New("attempt learner ID cannot be empty")

	// ErrInvalidResponseTime is returned when a response time is negative.
	ErrInvalidResponseTime = errors.New("response time cannot be negative")
)

// QuizMode is an informational tag describing how an item was presented.
// It has no effect on scheduling.
type QuizMode string

// Supported quiz modes.
const (
	QuizModeFlashcard      QuizMode = "flashcard"
	QuizModeMultipleChoice QuizMode = "multiple_choice"
	QuizModeTyping         QuizMode = "typing"
	QuizModeListening      QuizMode = "listening"
	QuizModePhoto          QuizMode = "photo"
)

// Valid reports whether m is a known quiz mode. The empty mode is valid and
// means "unspecified".
func (m QuizMode) Valid() bool {
	switch m {
	case "", QuizModeFlashcard, QuizModeMultipleChoice, QuizModeTyping, QuizModeListening, QuizModePhoto:
		return true
	default:
		return false
	}
}

// ReviewAttempt is an immutable record of one rating applied to one item.
type ReviewAttempt struct {
	ID             uuid.UUID  `json:"id"`
	ItemID         uuid.UUID  `json:"item_id"`
	LearnerID      uuid.UUID  `json:"learner_id"`
	SessionID      *uuid.UUID `json:"session_id,omitempty"`
	QuizMode       QuizMode   `json:"quiz_mode,omitempty"`
	Rating         Rating     `json:"rating"`
	IsCorrect      bool       `json:"is_correct"`
	ResponseTimeMs *int       `json:"response_time_ms,omitempty"`
	RequestID      *uuid.UUID `json:"request_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// NewReviewAttempt creates a validated attempt. IsCorrect is derived from the rating.
func NewReviewAttempt(
	itemID, learnerID uuid.UUID,
	rating Rating,
	quizMode QuizMode,
	sessionID *uuid.UUID,
	responseTimeMs *int,
	requestID *uuid.UUID,
	createdAt time.Time,
) (*ReviewAttempt, error) {
	attempt := &ReviewAttempt{
		ID:             uuid.New(),
		ItemID:         itemID,
		LearnerID:      learnerID,
		SessionID:      sessionID,
		QuizMode:       quizMode,
		Rating:         rating,
		IsCorrect:      rating.IsCorrect(),
		ResponseTimeMs: responseTimeMs,
		RequestID:      requestID,
		CreatedAt:      createdAt.UTC(),
	}

	if err := attempt.Validate(); err != nil {
		return nil, err
	}

	return attempt, nil
}

// Validate checks if the attempt has valid data.
func (a *ReviewAttempt) Validate() error {
	if a.ID == uuid.Nil {
		return ErrAttemptIDEmpty
	}
	if a.ItemID == uuid.Nil {
		return ErrAttemptItemIDEmpty
	}
	if a.LearnerID == uuid.Nil {
		return ErrAttemptLearnerIDEmpty
	}
	if !a.Rating.Valid() {
		return ErrInvalidRating
	}
	if !a.QuizMode.Valid() {
		return ErrInvalidQuizMode
	}
	if a.ResponseTimeMs != nil && *a.ResponseTimeMs < 0 {
		return ErrInvalidResponseTime
	}
	return nil
}
