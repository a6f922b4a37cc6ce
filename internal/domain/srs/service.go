package srs

import (
	"errors"
	"fmt"
	"time"

	"github.com/snapvocab/snapvocab-api/internal/domain"
)

// Common errors
var (
	// ErrInvalidRating wraps domain.ErrInvalidRating so callers can match either.
	ErrInvalidRating = fmt.Errorf("srs: %w", domain.ErrInvalidRating)

	// ErrInvalidState is returned when the input state violates the SRS invariants.
	ErrInvalidState = errors.New("srs: invalid scheduling state")
)

// Service defines the interface for SRS algorithm operations
type Service interface {
	// CalculateNextReview computes the scheduling state that follows a rating.
	// The input state is never modified.
	CalculateNextReview(state domain.SrsState, rating domain.Rating, today time.Time) (domain.SrsResult, error)

	// SelectDueItems builds an ordered review queue from a learner's items.
	// An empty queue is a valid result.
	SelectDueItems(items []*domain.VocabularyItem, today time.Time, opts SelectionOptions) []*domain.VocabularyItem

	// Params returns a copy of the parameters in use.
	Params() Params
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() (Service, error) {
	return NewServiceWithParams(NewDefaultParams())
}

// NewServiceWithParams creates a new SRS service with custom parameters
func NewServiceWithParams(params *Params) (Service, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &defaultService{
		params: params,
	}, nil
}

// CalculateNextReview implements the Service interface
func (s *defaultService) CalculateNextReview(
	state domain.SrsState,
	rating domain.Rating,
	today time.Time,
) (domain.SrsResult, error) {
	if !rating.Valid() {
		return domain.SrsResult{}, fmt.Errorf("%w: %d", ErrInvalidRating, int(rating))
	}

	if err := state.Validate(); err != nil {
		return domain.SrsResult{}, fmt.Errorf("%w: %w", ErrInvalidState, err)
	}

	return calculateNextState(state, rating, today, s.params), nil
}

// SelectDueItems implements the Service interface
func (s *defaultService) SelectDueItems(
	items []*domain.VocabularyItem,
	today time.Time,
	opts SelectionOptions,
) []*domain.VocabularyItem {
	return selectDueItems(items, today, opts)
}

// Params implements the Service interface
func (s *defaultService) Params() Params {
	p := *s.params
	p.FirstSuccessIntervals = copyIntervals(s.params.FirstSuccessIntervals)
	p.SecondSuccessIntervals = copyIntervals(s.params.SecondSuccessIntervals)
	return p
}

func copyIntervals(src map[domain.Rating]int) map[domain.Rating]int {
	dst := make(map[domain.Rating]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
