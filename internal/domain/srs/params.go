package srs

import (
	"errors"
	"fmt"

	"github.com/snapvocab/snapvocab-api/internal/domain"
)

// ErrInvalidParams is returned when a Params value cannot drive the scheduler.
var ErrInvalidParams = errors.New("invalid SRS parameters")

// Params defines all configurable parameters for the SRS algorithm
type Params struct {
	// Easiness factor floor
	MinEasinessFactor float64

	// Interval assigned after an Again rating
	AgainIntervalDays int

	// Fixed intervals for the first and second consecutive successes
	FirstSuccessIntervals  map[domain.Rating]int
	SecondSuccessIntervals map[domain.Rating]int

	// Multipliers applied after the easiness-factor growth on later successes
	HardIntervalModifier float64
	EasyIntervalModifier float64

	// Smallest interval a successful review can produce
	MinIntervalDays int

	// Interval at which an item counts as learned
	LearnedThresholdDays int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the default.
type ParamsConfig struct {
	MinEasinessFactor float64

	AgainIntervalDays int

	FirstSuccessHardInterval int
	FirstSuccessGoodInterval int
	FirstSuccessEasyInterval int

	SecondSuccessHardInterval int
	SecondSuccessGoodInterval int
	SecondSuccessEasyInterval int

	HardIntervalModifier float64
	EasyIntervalModifier float64

	LearnedThresholdDays int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		MinEasinessFactor: domain.MinEasinessFactor,
		AgainIntervalDays: 1,

		FirstSuccessIntervals: map[domain.Rating]int{
			domain.RatingHard: 2,
			domain.RatingGood: 4,
			domain.RatingEasy: 7,
		},
		SecondSuccessIntervals: map[domain.Rating]int{
			domain.RatingHard: 4,
			domain.RatingGood: 7,
			domain.RatingEasy: 14,
		},

		HardIntervalModifier: 0.85,
		EasyIntervalModifier: 1.3,

		MinIntervalDays:      1,
		LearnedThresholdDays: domain.LearnedThresholdDays,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEasinessFactor > 0 {
		params.MinEasinessFactor = config.MinEasinessFactor
	}
	if config.AgainIntervalDays > 0 {
		params.AgainIntervalDays = config.AgainIntervalDays
	}

	overrideInterval(params.FirstSuccessIntervals, domain.RatingHard, config.FirstSuccessHardInterval)
	overrideInterval(params.FirstSuccessIntervals, domain.RatingGood, config.FirstSuccessGoodInterval)
	overrideInterval(params.FirstSuccessIntervals, domain.RatingEasy, config.FirstSuccessEasyInterval)
	overrideInterval(params.SecondSuccessIntervals, domain.RatingHard, config.SecondSuccessHardInterval)
	overrideInterval(params.SecondSuccessIntervals, domain.RatingGood, config.SecondSuccessGoodInterval)
	overrideInterval(params.SecondSuccessIntervals, domain.RatingEasy, config.SecondSuccessEasyInterval)

	if config.HardIntervalModifier > 0 {
		params.HardIntervalModifier = config.HardIntervalModifier
	}
	if config.EasyIntervalModifier > 0 {
		params.EasyIntervalModifier = config.EasyIntervalModifier
	}
	if config.LearnedThresholdDays > 0 {
		params.LearnedThresholdDays = config.LearnedThresholdDays
	}

	return params
}

func overrideInterval(intervals map[domain.Rating]int, rating domain.Rating, days int) {
	if days > 0 {
		intervals[rating] = days
	}
}

// Validate checks that the parameters keep every invariant of the scheduler intact.
func (p *Params) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: params cannot be nil", ErrInvalidParams)
	}
	if p.MinEasinessFactor < domain.MinEasinessFactor {
		return fmt.Errorf("%w: minimum easiness factor %.2f is below %.2f",
			ErrInvalidParams, p.MinEasinessFactor, domain.MinEasinessFactor)
	}
	if p.AgainIntervalDays < 1 || p.MinIntervalDays < 1 || p.LearnedThresholdDays < 1 {
		return fmt.Errorf("%w: intervals and thresholds must be at least one day", ErrInvalidParams)
	}
	if p.HardIntervalModifier <= 0 || p.EasyIntervalModifier <= 0 {
		return fmt.Errorf("%w: interval modifiers must be positive", ErrInvalidParams)
	}
	for _, r := range []domain.Rating{domain.RatingHard, domain.RatingGood, domain.RatingEasy} {
		if p.FirstSuccessIntervals[r] < 1 {
			return fmt.Errorf("%w: first success interval for %s must be at least one day", ErrInvalidParams, r)
		}
		if p.SecondSuccessIntervals[r] < 1 {
			return fmt.Errorf("%w: second success interval for %s must be at least one day", ErrInvalidParams, r)
		}
	}
	return nil
}
