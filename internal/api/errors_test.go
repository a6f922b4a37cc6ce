package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/snapvocab/snapvocab-api/internal/api/shared"
	"github.com/snapvocab/snapvocab-api/internal/domain"
	"github.com/snapvocab/snapvocab-api/internal/platform/logger"
	"github.com/snapvocab/snapvocab-api/internal/service/auth"
	"github.com/snapvocab/snapvocab-api/internal/service/review"
	"github.com/snapvocab/snapvocab-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"bad subject", auth.ErrInvalidSubject, http.StatusUnauthorized},
		{"not owned", review.ErrItemNotOwned, http.StatusForbidden},
		{"item not found", review.ErrItemNotFound, http.StatusNotFound},
		{"store not found", store.ErrItemNotFound, http.StatusNotFound},
		{"conflict", review.ErrRequestIDConflict, http.StatusConflict},
		{"invalid rating", review.ErrInvalidRating, http.StatusBadRequest},
		{"invalid attempt", review.ErrInvalidAttempt, http.StatusBadRequest},
		{"validation error", domain.NewValidationError("limit", "bad", nil), http.StatusBadRequest},
		{"empty body", shared.ErrEmptyBody, http.StatusBadRequest},
		{"persistence", fmt.Errorf("%w: db", review.ErrPersistence), http.StatusInternalServerError},
		{"unknown", errors.New("other"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
			assert.Equal(t, tc.want, MapErrorToStatusCode(fmt.Errorf("wrapped: %w", tc.err)))
		})
	}
}

func TestGetSafeErrorMessage_DoesNotLeak(t *testing.T) {
	t.Parallel()
	err := fmt.Errorf("%w: pq: password authentication failed for user \"admin\" at db.internal:5432",
		review.ErrPersistence)

	msg := GetSafeErrorMessage(err)
	assert.Equal(t, "Storage is temporarily unavailable, please retry", msg)
	assert.NotContains(t, msg, "admin")

	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(errors.New("SELECT * FROM vocabulary_items")))
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()
	err := shared.ValidateRequest(&PreviewRequest{Rating: 7})
	require.Error(t, err)
	assert.Equal(t, "Invalid rating: must be at most 4", SanitizeValidationError(err))
	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("plain")))
}

func TestHandleAPIError(t *testing.T) {
	t.Parallel()
	buf, log := logger.NewTestLogger(t)

	req := httptest.NewRequest(http.MethodPost, "/api/items/x/attempts", nil)
	req = req.WithContext(logger.WithLogger(req.Context(), log))

	w := httptest.NewRecorder()
	HandleAPIError(w, req, review.ErrItemNotOwned, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "WARN", entries[0]["level"])

	w = httptest.NewRecorder()
	HandleAPIError(w, req, errors.New("boom"), "Failed to do the thing")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to do the thing", decodeError(t, w))
}
