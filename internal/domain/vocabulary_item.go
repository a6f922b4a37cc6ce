package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Vocabulary item validation errors
var (
	// ErrItemIDEmpty is returned when an item ID is empty or nil.
	ErrItemIDEmpty = errors.New("item ID cannot be empty")

	// ErrItemLearnerIDEmpty is returned when an item's learner ID is empty or nil.
	ErrItemLearnerIDEmpty = errors.New("item learner ID cannot be empty")

	// ErrItemWordEmpty is returned when an item has no word.
	ErrItemWordEmpty = errors.New("item word cannot be empty")

	// ErrInvalidEasinessFactor is returned when the easiness factor drops below the floor.
	ErrInvalidEasinessFactor = errors.New("easiness factor must be at least 1.3")

	// ErrInvalidInterval is returned when the interval is negative.
	ErrInvalidInterval = errors.New("interval cannot be negative")

	// ErrInvalidRepetitions is returned when the repetition count is negative.
	ErrInvalidRepetitions = errors.New("repetitions cannot be negative")

	// ErrInvalidCorrectStreak is returned when the correct streak is negative.
	ErrInvalidCorrectStreak = errors.New("correct streak cannot be negative")

	// ErrInconsistentSchedule is returned when an item has repetitions but no interval.
	ErrInconsistentSchedule = errors.New("an item with repetitions must have an interval of at least one day")
)

const (
	// DefaultEasinessFactor is the easiness factor assigned to new items.
	DefaultEasinessFactor = 2.5

	// MinEasinessFactor is the lowest easiness factor an item can reach.
	MinEasinessFactor = 1.3

	// LearnedThresholdDays is the interval at which an item counts as learned.
	LearnedThresholdDays = 21
)

// SrsState is the scheduling state carried between reviews.
type SrsState struct {
	EasinessFactor float64 `json:"easiness_factor"`
	IntervalDays   int     `json:"interval_days"`
	Repetitions    int     `json:"repetitions"`
	CorrectStreak  int     `json:"correct_streak"`
}

// SrsResult is the outcome of applying a single rating to an SrsState.
type SrsResult struct {
	SrsState
	NextReviewDate time.Time `json:"next_review_date"`
	IsLearned      bool      `json:"is_learned"`
}

// VocabularyItem is a single word or phrase a learner is studying,
// together with its spaced repetition schedule.
//
// NextReviewDate is a calendar date normalised with DateOf. A nil value means
// the item has never been scheduled and is always due.
type VocabularyItem struct {
	ID             uuid.UUID  `json:"id"`
	LearnerID      uuid.UUID  `json:"learner_id"`
	ListID         *uuid.UUID `json:"list_id,omitempty"`
	Word           string     `json:"word"`
	Translation    string     `json:"translation"`
	ImageURL       string     `json:"image_url,omitempty"`
	EasinessFactor float64    `json:"easiness_factor"`
	IntervalDays   int        `json:"interval_days"`
	Repetitions    int        `json:"repetitions"`
	CorrectStreak  int        `json:"correct_streak"`
	NextReviewDate *time.Time `json:"next_review_date,omitempty"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	IsLearned      bool       `json:"is_learned"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewVocabularyItem creates an unscheduled item for the given learner.
// The item starts with the default easiness factor and no review date, so it
// is due immediately.
func NewVocabularyItem(learnerID uuid.UUID, listID *uuid.UUID, word, translation, imageURL string) (*VocabularyItem, error) {
	now := time.Now().UTC()
	item := &VocabularyItem{
		ID:             uuid.New(),
		LearnerID:      learnerID,
		ListID:         listID,
		Word:           strings.TrimSpace(word),
		Translation:    strings.TrimSpace(translation),
		ImageURL:       imageURL,
		EasinessFactor: DefaultEasinessFactor,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks the item's identity and schedule invariants.
func (i *VocabularyItem) Validate() error {
	if i.ID == uuid.Nil {
		return ErrItemIDEmpty
	}

	if i.LearnerID == uuid.Nil {
		return ErrItemLearnerIDEmpty
	}

	if strings.TrimSpace(i.Word) == "" {
		return ErrItemWordEmpty
	}

	return i.State().Validate()
}

// State returns the scheduling state of the item.
func (i *VocabularyItem) State() SrsState {
	return SrsState{
		EasinessFactor: i.EasinessFactor,
		IntervalDays:   i.IntervalDays,
		Repetitions:    i.Repetitions,
		CorrectStreak:  i.CorrectStreak,
	}
}

// ApplyResult copies a calculated schedule onto the item and stamps the
// review time. reviewedAt is stored in UTC.
func (i *VocabularyItem) ApplyResult(result SrsResult, reviewedAt time.Time) {
	next := DateOf(result.NextReviewDate)
	reviewed := reviewedAt.UTC()

	i.EasinessFactor = result.EasinessFactor
	i.IntervalDays = result.IntervalDays
	i.Repetitions = result.Repetitions
	i.CorrectStreak = result.CorrectStreak
	i.NextReviewDate = &next
	i.LastReviewedAt = &reviewed
	i.IsLearned = result.IsLearned
	i.UpdatedAt = reviewed
}

// IsDue reports whether the item should be reviewed on the given day.
// Learned items are never due.
func (i *VocabularyItem) IsDue(today time.Time) bool {
	if i.IsLearned {
		return false
	}
	if i.NextReviewDate == nil {
		return true
	}
	return !DateOf(*i.NextReviewDate).After(DateOf(today))
}

// IsNew reports whether the item has never been reviewed.
func (i *VocabularyItem) IsNew() bool {
	return i.LastReviewedAt == nil
}

// Validate checks the SRS invariants of a scheduling state.
func (s SrsState) Validate() error {
	if s.EasinessFactor < MinEasinessFactor {
		return ErrInvalidEasinessFactor
	}
	if s.IntervalDays < 0 {
		return ErrInvalidInterval
	}
	if s.Repetitions < 0 {
		return ErrInvalidRepetitions
	}
	if s.CorrectStreak < 0 {
		return ErrInvalidCorrectStreak
	}
	if s.Repetitions > 0 && s.IntervalDays < 1 {
		return ErrInconsistentSchedule
	}
	return nil
}

// NewSrsState returns the scheduling state of an item that has never been reviewed.
func NewSrsState() SrsState {
	return SrsState{EasinessFactor: DefaultEasinessFactor}
}

// DateOf truncates t to its calendar date, keeping the wall-clock date of t's
// own location, and returns it as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
