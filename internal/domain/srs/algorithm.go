package srs

import (
	"math"
	"time"

	"github.com/snapvocab/snapvocab-api/internal/domain"
)

// calculateNewEasinessFactor applies the SM-2 easiness update for the given rating.
//
// The update is EF + (0.1 - d*(0.08 + d*0.02)) where d = 5 - quality. It is
// applied on every review, including Again, and the result never drops below
// params.MinEasinessFactor. There is no upper bound.
//
// With the four-level scale the deltas are:
//   - Again (q=1): -0.54
//   - Hard  (q=3): -0.14
//   - Good  (q=4):  0.00
//   - Easy  (q=5): +0.10
func calculateNewEasinessFactor(currentEF float64, rating domain.Rating, params *Params) float64 {
	d := float64(5 - rating.Quality())
	newEF := currentEF + (0.1 - d*(0.08+d*0.02))

	if newEF < params.MinEasinessFactor {
		newEF = params.MinEasinessFactor
	}

	return newEF
}

// calculateNewInterval determines how many days to wait before the next review.
//
// Parameters:
//   - currentInterval: the interval produced by the previous review
//   - repetitions: successful reviews since the last Again
//   - newEF: the easiness factor already updated for this review
//   - rating: the rating being applied
//
// Algorithm behavior:
//   - Again: fixed short interval (one day by default)
//   - First success after a reset: FirstSuccessIntervals (2/4/7)
//   - Second success: SecondSuccessIntervals (4/7/14)
//   - Later successes: round(currentInterval * newEF), then Hard is dampened
//     and Easy is boosted, each rounded on its own. Hard never drops below
//     MinIntervalDays.
func calculateNewInterval(
	currentInterval int,
	repetitions int,
	newEF float64,
	rating domain.Rating,
	params *Params,
) int {
	if rating == domain.RatingAgain {
		return params.AgainIntervalDays
	}

	switch repetitions {
	case 0:
		return params.FirstSuccessIntervals[rating]
	case 1:
		return params.SecondSuccessIntervals[rating]
	}

	interval := int(math.Round(float64(currentInterval) * newEF))

	switch rating {
	case domain.RatingHard:
		interval = int(math.Round(float64(interval) * params.HardIntervalModifier))
	case domain.RatingEasy:
		interval = int(math.Round(float64(interval) * params.EasyIntervalModifier))
	}

	if interval < params.MinIntervalDays {
		interval = params.MinIntervalDays
	}

	return interval
}

// calculateNextReviewDate returns the calendar date of the next review.
// The time-of-day of today is discarded.
func calculateNextReviewDate(interval int, today time.Time) time.Time {
	return domain.DateOf(today).AddDate(0, 0, interval)
}

// calculateNextState applies one rating to a scheduling state and returns the
// full result. The input state is passed by value and never modified.
func calculateNextState(state domain.SrsState, rating domain.Rating, today time.Time, params *Params) domain.SrsResult {
	newEF := calculateNewEasinessFactor(state.EasinessFactor, rating, params)
	interval := calculateNewInterval(state.IntervalDays, state.Repetitions, newEF, rating, params)

	next := domain.SrsState{
		EasinessFactor: newEF,
		IntervalDays:   interval,
	}

	if rating.IsCorrect() {
		next.Repetitions = state.Repetitions + 1
		next.CorrectStreak = state.CorrectStreak + 1
	}

	return domain.SrsResult{
		SrsState:       next,
		NextReviewDate: calculateNextReviewDate(interval, today),
		IsLearned:      interval >= params.LearnedThresholdDays,
	}
}
