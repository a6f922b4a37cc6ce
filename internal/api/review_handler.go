package api

import (
	"log/slog"
	"net/http"

	"github.com/snapvocab/snapvocab-api/internal/api/shared"
	"github.com/snapvocab/snapvocab-api/internal/domain"
	"github.com/snapvocab/snapvocab-api/internal/platform/logger"
	"github.com/snapvocab/snapvocab-api/internal/service/review"
)

// ReviewHandler serves the review session endpoints.
type ReviewHandler struct {
	reviewService review.ReviewService
	logger        *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviewService review.ReviewService, logger *slog.Logger) *ReviewHandler {
	if reviewService == nil {
		panic("reviewService cannot be nil for ReviewHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for ReviewHandler")
	}

	return &ReviewHandler{
		reviewService: reviewService,
		logger:        logger.With(slog.String("component", "review_handler")),
	}
}

// GetDueItems handles GET /api/review/due.
func (h *ReviewHandler) GetDueItems(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, ok := requireLearnerID(w, r, log)
	if !ok {
		return
	}

	query, err := parseDueItemsQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	items, err := h.reviewService.DueItems(r.Context(), learnerID, query)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load due items")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DueItemsResponse{
		Items: itemsToResponse(items),
		Count: len(items),
	})
}

// RecordAttempt handles POST /api/items/{id}/attempts. A new attempt answers
// 201; a replay of an earlier request id answers 200 with the stored attempt.
func (h *ReviewHandler) RecordAttempt(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, itemID, ok := handleLearnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req RecordAttemptRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.reviewService.RecordAttempt(r.Context(), review.RecordAttemptRequest{
		ItemID:         itemID,
		LearnerID:      learnerID,
		Rating:         domain.Rating(req.Rating),
		SessionID:      parseOptionalUUID(req.SessionID),
		QuizMode:       domain.QuizMode(req.QuizMode),
		ResponseTimeMs: req.ResponseTimeMs,
		RequestID:      parseOptionalUUID(req.RequestID),
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record attempt")
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}

	log.Debug("attempt recorded",
		slog.String("item_id", itemID.String()),
		slog.Bool("replayed", result.Replayed))
	shared.RespondWithJSON(w, r, status, RecordAttemptResponse{
		Item:      itemToResponse(result.Item),
		Attempt:   attemptToResponse(result.Attempt),
		IsCorrect: result.IsCorrect,
		Replayed:  result.Replayed,
	})
}

// PreviewNextReview handles POST /api/items/{id}/preview.
func (h *ReviewHandler) PreviewNextReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, itemID, ok := handleLearnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req PreviewRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.reviewService.PreviewNextReview(r.Context(), learnerID, itemID, domain.Rating(req.Rating))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to preview review")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, previewToResponse(result))
}
