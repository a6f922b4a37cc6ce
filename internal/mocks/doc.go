// Package mocks provides hand-written test doubles for the service interfaces
// consumed by the HTTP layer.
//
// Each mock exposes a function field per method. When the field is nil the
// mock returns its default values instead:
//
//	svc := &mocks.MockReviewService{
//	    DueItemsFn: func(ctx context.Context, learnerID uuid.UUID, q review.DueItemsQuery) ([]*domain.VocabularyItem, error) {
//	        return nil, review.ErrPersistence
//	    },
//	}
//
// Calls are recorded so tests can assert on the arguments that reached the service.
package mocks
