package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/snapvocab/snapvocab-api/internal/clock"
	"github.com/snapvocab/snapvocab-api/internal/domain"
	"github.com/snapvocab/snapvocab-api/internal/domain/srs"
	"github.com/snapvocab/snapvocab-api/internal/platform/logger"
	"github.com/snapvocab/snapvocab-api/internal/store"
)

var _ ReviewService = (*reviewServiceImpl)(nil)

type reviewServiceImpl struct {
	items      ItemRepository
	attempts   AttemptRepository
	srsService srs.Service
	clock      clock.Clock
	limits     SessionLimits
	logger     *slog.Logger
}

// NewReviewService creates a ReviewService. Zero session limits fall back to
// 20 items per queue and a maximum of 100.
func NewReviewService(
	items ItemRepository,
	attempts AttemptRepository,
	srsService srs.Service,
	clk clock.Clock,
	limits SessionLimits,
	logger *slog.Logger,
) ReviewService {
	if items == nil {
		panic("items cannot be nil")
	}
	if attempts == nil {
		panic("attempts cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if clk == nil {
		panic("clock cannot be nil")
	}

	if limits.MaxLimit <= 0 {
		limits.MaxLimit = 100
	}
	if limits.DefaultLimit <= 0 {
		limits.DefaultLimit = 20
	}
	if limits.DefaultLimit > limits.MaxLimit {
		limits.DefaultLimit = limits.MaxLimit
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &reviewServiceImpl{
		items:      items,
		attempts:   attempts,
		srsService: srsService,
		clock:      clk,
		limits:     limits,
		logger:     logger.With(slog.String("component", "review_service")),
	}
}

// RecordAttempt implements ReviewService.RecordAttempt.
func (s *reviewServiceImpl) RecordAttempt(
	ctx context.Context,
	req RecordAttemptRequest,
) (*RecordAttemptResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("learner_id", req.LearnerID.String()),
		slog.String("item_id", req.ItemID.String()))

	if !req.Rating.Valid() {
		log.Debug("rejected attempt with invalid rating", slog.Int("rating", int(req.Rating)))
		return nil, fmt.Errorf("%w: %d", ErrInvalidRating, int(req.Rating))
	}
	if !req.QuizMode.Valid() {
		return nil, fmt.Errorf("%w: unknown quiz mode %q", ErrInvalidAttempt, req.QuizMode)
	}
	if req.ResponseTimeMs != nil && *req.ResponseTimeMs < 0 {
		return nil, fmt.Errorf("%w: response time must not be negative", ErrInvalidAttempt)
	}

	var result *RecordAttemptResult
	err := store.RunInTransaction(ctx, s.items.DB(), func(ctx context.Context, tx *sql.Tx) error {
		items := s.items.WithTx(tx)
		attempts := s.attempts.WithTx(tx)

		item, err := items.GetForUpdate(ctx, req.ItemID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return ErrItemNotFound
			}
			return newPersistenceError("record_attempt", "failed to load item", err)
		}

		if item.LearnerID != req.LearnerID {
			log.Warn("learner attempted to review an item they do not own",
				slog.String("owner_id", item.LearnerID.String()))
			return ErrItemNotOwned
		}

		if req.RequestID != nil {
			previous, err := attempts.GetByRequestID(ctx, req.LearnerID, *req.RequestID)
			switch {
			case err == nil:
				if previous.ItemID != req.ItemID {
					return ErrRequestIDConflict
				}
				log.Info("replaying previously recorded attempt",
					slog.String("request_id", req.RequestID.String()),
					slog.String("attempt_id", previous.ID.String()))
				result = &RecordAttemptResult{
					Item:      item,
					Attempt:   previous,
					IsCorrect: previous.IsCorrect,
					Replayed:  true,
				}
				return nil
			case !store.IsNotFoundError(err):
				return newPersistenceError("record_attempt", "failed to look up request id", err)
			}
		}

		srsResult, err := s.srsService.CalculateNextReview(item.State(), req.Rating, s.clock.Today())
		if err != nil {
			return newPersistenceError("record_attempt", "stored schedule is invalid", err)
		}

		now := s.clock.Now()
		attempt, err := domain.NewReviewAttempt(
			item.ID, req.LearnerID, req.Rating, req.QuizMode,
			req.SessionID, req.ResponseTimeMs, req.RequestID, now,
		)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidAttempt, err)
		}

		if err := attempts.Create(ctx, attempt); err != nil {
			if errors.Is(err, store.ErrDuplicateRequestID) {
				return ErrRequestIDConflict
			}
			return newPersistenceError("record_attempt", "failed to store attempt", err)
		}

		item.ApplyResult(srsResult, now)
		if err := items.UpdateSchedule(ctx, item); err != nil {
			return newPersistenceError("record_attempt", "failed to update schedule", err)
		}

		result = &RecordAttemptResult{
			Item:      item,
			Attempt:   attempt,
			IsCorrect: attempt.IsCorrect,
		}
		return nil
	})
	if err != nil {
		var svcErr *ServiceError
		switch {
		case errors.As(err, &svcErr):
			log.Error("failed to record attempt", slog.String("error", err.Error()))
			return nil, err
		case errors.Is(err, ErrItemNotFound),
			errors.Is(err, ErrItemNotOwned),
			errors.Is(err, ErrRequestIDConflict),
			errors.Is(err, ErrInvalidAttempt):
			return nil, err
		default:
			log.Error("failed to record attempt", slog.String("error", err.Error()))
			return nil, newPersistenceError("record_attempt", "transaction failed", err)
		}
	}

	if !result.Replayed {
		log.Debug("attempt recorded",
			slog.String("rating", req.Rating.String()),
			slog.Float64("easiness_factor", result.Item.EasinessFactor),
			slog.Int("interval_days", result.Item.IntervalDays),
			slog.Bool("is_learned", result.Item.IsLearned))
	}

	return result, nil
}

// DueItems implements ReviewService.DueItems.
func (s *reviewServiceImpl) DueItems(
	ctx context.Context,
	learnerID uuid.UUID,
	query DueItemsQuery,
) ([]*domain.VocabularyItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	limit := s.limits.DefaultLimit
	if query.Limit != nil {
		limit = *query.Limit
	}
	if limit <= 0 {
		return []*domain.VocabularyItem{}, nil
	}
	if limit > s.limits.MaxLimit {
		limit = s.limits.MaxLimit
	}

	items, err := s.items.ListByLearner(ctx, learnerID, store.ItemFilter{
		ListID:         query.ListID,
		ExcludeLearned: true,
	})
	if err != nil {
		log.Error("failed to load items for due queue",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, newPersistenceError("due_items", "failed to load items", err)
	}

	due := s.srsService.SelectDueItems(items, s.clock.Today(), srs.SelectionOptions{
		Limit:      limit,
		IncludeNew: query.IncludeNew,
		ListID:     query.ListID,
	})

	log.Debug("built due queue",
		slog.String("learner_id", learnerID.String()),
		slog.Int("candidates", len(items)),
		slog.Int("selected", len(due)))
	return due, nil
}

// PreviewNextReview implements ReviewService.PreviewNextReview.
func (s *reviewServiceImpl) PreviewNextReview(
	ctx context.Context,
	learnerID, itemID uuid.UUID,
	rating domain.Rating,
) (domain.SrsResult, error) {
	if !rating.Valid() {
		return domain.SrsResult{}, fmt.Errorf("%w: %d", ErrInvalidRating, int(rating))
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return domain.SrsResult{}, ErrItemNotFound
		}
		return domain.SrsResult{}, newPersistenceError("preview_next_review", "failed to load item", err)
	}

	if item.LearnerID != learnerID {
		logger.FromContextOrDefault(ctx, s.logger).Warn("learner attempted to preview an item they do not own",
			slog.String("learner_id", learnerID.String()),
			slog.String("item_id", itemID.String()),
			slog.String("owner_id", item.LearnerID.String()))
		return domain.SrsResult{}, ErrItemNotOwned
	}

	result, err := s.srsService.CalculateNextReview(item.State(), rating, s.clock.Today())
	if err != nil {
		return domain.SrsResult{}, &ServiceError{
			Operation: "preview_next_review",
			Message:   "failed to calculate schedule",
			Err:       err,
		}
	}
	return result, nil
}

// ListAttempts implements ReviewService.ListAttempts.
func (s *reviewServiceImpl) ListAttempts(
	ctx context.Context,
	learnerID uuid.UUID,
	limit int,
) ([]*domain.ReviewAttempt, error) {
	attempts, err := s.attempts.ListByLearner(ctx, learnerID, limit)
	if err != nil {
		return nil, newPersistenceError("list_attempts", "failed to load attempts", err)
	}
	return attempts, nil
}

// ListItems implements ReviewService.ListItems.
func (s *reviewServiceImpl) ListItems(ctx context.Context, learnerID uuid.UUID) ([]*domain.VocabularyItem, error) {
	items, err := s.items.ListByLearner(ctx, learnerID, store.ItemFilter{})
	if err != nil {
		return nil, newPersistenceError("list_items", "failed to load items", err)
	}
	return items, nil
}
