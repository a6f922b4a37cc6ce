package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/snapvocab/snapvocab-api/internal/api/shared"
	"github.com/snapvocab/snapvocab-api/internal/domain"
	"github.com/snapvocab/snapvocab-api/internal/platform/logger"
	"github.com/snapvocab/snapvocab-api/internal/service/review"
)

// getPathUUID extracts a UUID from the URL path parameters.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// requireLearnerID returns the authenticated learner, writing a 401 when the
// auth middleware did not set one.
func requireLearnerID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	learnerID, ok := shared.GetLearnerID(r.Context())
	if !ok {
		log.Warn("learner ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return uuid.Nil, false
	}
	return learnerID, true
}

// handleLearnerIDAndPathUUID extracts both the learner ID from context and a
// UUID from the path. It writes an error response if either extraction fails.
func handleLearnerIDAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (uuid.UUID, uuid.UUID, bool) {
	if log == nil {
		log = logger.FromContext(r.Context())
	}

	learnerID, ok := requireLearnerID(w, r, log)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	pathID, err := getPathUUID(r, paramName)
	if err != nil {
		log.Debug("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return uuid.Nil, uuid.Nil, false
	}

	return learnerID, pathID, true
}

// parseDueItemsQuery reads limit, include_new and list_id from the query string.
// Missing values keep their zero value; a missing limit means the server default.
func parseDueItemsQuery(r *http.Request) (review.DueItemsQuery, error) {
	var query review.DueItemsQuery
	values := r.URL.Query()

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return query, domain.NewValidationError("limit", "must be a non-negative integer", domain.ErrValidation)
		}
		query.Limit = &limit
	}

	if raw := values.Get("include_new"); raw != "" {
		includeNew, err := strconv.ParseBool(raw)
		if err != nil {
			return query, domain.NewValidationError("include_new", "must be a boolean", domain.ErrValidation)
		}
		query.IncludeNew = includeNew
	}

	if raw := values.Get("list_id"); raw != "" {
		listID, err := uuid.Parse(raw)
		if err != nil {
			return query, domain.NewValidationError("list_id", "has invalid format", domain.ErrInvalidID)
		}
		query.ListID = &listID
	}

	return query, nil
}
