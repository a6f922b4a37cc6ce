package srs

import (
	"bytes"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/snapvocab/snapvocab-api/internal/domain"
)

// SelectionOptions controls how a review session queue is built.
type SelectionOptions struct {
	// Limit is the maximum number of items returned. Values <= 0 yield an empty queue.
	Limit int

	// IncludeNew backfills the queue with never-reviewed items scheduled in the future.
	IncludeNew bool

	// ListID restricts selection to items of a single list when set.
	ListID *uuid.UUID
}

// selectDueItems builds the review queue for one day.
//
// Due items (never scheduled, or scheduled on or before today) come first,
// oldest date first with unscheduled items at the front. When IncludeNew is
// set and there is room left, never-reviewed items with a future date are
// appended, newest first. Learned items are never selected. The input slice is
// not reordered.
func selectDueItems(items []*domain.VocabularyItem, today time.Time, opts SelectionOptions) []*domain.VocabularyItem {
	if opts.Limit <= 0 {
		return []*domain.VocabularyItem{}
	}

	day := domain.DateOf(today)

	var due, fresh []*domain.VocabularyItem
	for _, item := range items {
		if item == nil || item.IsLearned {
			continue
		}
		if opts.ListID != nil && (item.ListID == nil || *item.ListID != *opts.ListID) {
			continue
		}

		if item.NextReviewDate == nil || !domain.DateOf(*item.NextReviewDate).After(day) {
			due = append(due, item)
			continue
		}

		if item.LastReviewedAt == nil {
			fresh = append(fresh, item)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		return dueBefore(due[i], due[j])
	})

	result := make([]*domain.VocabularyItem, 0, opts.Limit)
	result = append(result, due...)

	if opts.IncludeNew && len(result) < opts.Limit {
		sort.SliceStable(fresh, func(i, j int) bool {
			a, b := fresh[i], fresh[j]
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return bytes.Compare(a.ID[:], b.ID[:]) < 0
		})

		room := opts.Limit - len(result)
		if len(fresh) > room {
			fresh = fresh[:room]
		}
		result = append(result, fresh...)
	}

	if len(result) > opts.Limit {
		result = result[:opts.Limit]
	}

	return result
}

// dueBefore orders due items: unscheduled first, then by review date, then by
// creation time and ID.
func dueBefore(a, b *domain.VocabularyItem) bool {
	switch {
	case a.NextReviewDate == nil && b.NextReviewDate != nil:
		return true
	case a.NextReviewDate != nil && b.NextReviewDate == nil:
		return false
	case a.NextReviewDate != nil && b.NextReviewDate != nil:
		da, db := domain.DateOf(*a.NextReviewDate), domain.DateOf(*b.NextReviewDate)
		if !da.Equal(db) {
			return da.Before(db)
		}
	}

	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}
