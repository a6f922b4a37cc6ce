// Package clock supplies the current time and the learner-facing calendar day.
// Scheduling code never calls time.Now directly; it asks a Clock so tests can
// pin "today".
package clock

import (
	"sync"
	"time"

	"github.com/snapvocab/snapvocab-api/internal/domain"
)

// Clock reports the current instant and the current calendar date.
type Clock interface {
	// Now returns the current instant in UTC.
	Now() time.Time

	// Today returns the current calendar date in the clock's location,
	// normalised with domain.DateOf.
	Today() time.Time
}

type systemClock struct {
	loc *time.Location
}

// New returns a Clock backed by the system time. Today is evaluated in loc;
// a nil loc means UTC.
func New(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time {
	return time.Now().UTC()
}

func (c systemClock) Today() time.Time {
	return domain.DateOf(time.Now().In(c.loc))
}

// Fixed is a manually controlled Clock for tests.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
	loc *time.Location
}

// NewFixed returns a Fixed clock set to now. Today is evaluated in now's location.
func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now, loc: now.Location()}
}

// Now returns the pinned instant in UTC.
func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now.UTC()
}

// Today returns the pinned calendar date.
func (f *Fixed) Today() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return domain.DateOf(f.now.In(f.loc))
}

// Set moves the clock to t.
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

// Advance moves the clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// AdvanceDays moves the clock forward by n calendar days.
func (f *Fixed) AdvanceDays(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.AddDate(0, 0, n)
}
