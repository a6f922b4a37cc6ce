package domain

import (
	"fmt"
	"strconv"
)

// Rating is the learner's self-assessed recall quality for a single review.
type Rating int

// The four rating levels. Any other value is invalid.
const (
	RatingAgain Rating = 1
	RatingHard  Rating = 2
	RatingGood  Rating = 3
	RatingEasy  Rating = 4
)

var ratingNames = map[Rating]string{
	RatingAgain: "again",
	RatingHard:  "hard",
	RatingGood:  "good",
	RatingEasy:  "easy",
}

// ParseRating converts a raw integer into a Rating.
// It returns ErrInvalidRating for anything outside 1..4.
func ParseRating(v int) (Rating, error) {
	r := Rating(v)
	if !r.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidRating, v)
	}
	return r, nil
}

// Valid reports whether r is one of the four rating levels.
func (r Rating) Valid() bool {
	return r >= RatingAgain && r <= RatingEasy
}

// Quality maps the rating onto the SM-2 quality scale (1, 3, 4 or 5).
// Invalid ratings map to 0.
func (r Rating) Quality() int {
	switch r {
	case RatingAgain:
		return 1
	case RatingHard:
		return 3
	case RatingGood:
		return 4
	case RatingEasy:
		return 5
	default:
		return 0
	}
}

// IsCorrect reports whether the rating counts as a successful recall.
func (r Rating) IsCorrect() bool {
	return r >= RatingHard
}

// String returns the lower-case rating name, or "Rating(n)" for invalid values.
func (r Rating) String() string {
	if name, ok := ratingNames[r]; ok {
		return name
	}
	return "Rating(" + strconv.Itoa(int(r)) + ")"
}
