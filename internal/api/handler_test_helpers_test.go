package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/snapvocab/snapvocab-api/internal/api/shared"
	"github.com/snapvocab/snapvocab-api/internal/clock"
	"github.com/snapvocab/snapvocab-api/internal/domain"
	"github.com/snapvocab/snapvocab-api/internal/mocks"
	"github.com/snapvocab/snapvocab-api/internal/platform/logger"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 6, 15, 10, 30, 0, 0, time.UTC)

// newTestRouter mounts the handlers the way the server does, with learnerID
// standing in for the auth middleware. A nil learnerID leaves the request
// unauthenticated.
func newTestRouter(t *testing.T, svc *mocks.MockReviewService, learnerID *uuid.UUID) http.Handler {
	t.Helper()
	_, log := logger.NewTestLogger(t)

	reviewHandler := NewReviewHandler(svc, log)
	exportHandler := NewExportHandler(svc, clock.NewFixed(testNow), log)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if learnerID != nil {
				req = req.WithContext(shared.WithLearnerID(req.Context(), *learnerID))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/api/review/due", reviewHandler.GetDueItems)
	r.Post("/api/items/{id}/attempts", reviewHandler.RecordAttempt)
	r.Post("/api/items/{id}/preview", reviewHandler.PreviewNextReview)
	r.Get("/api/attempts/export", exportHandler.ExportAttempts)
	return r
}

func doRequest(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func testItem(t *testing.T, learnerID uuid.UUID, word string) *domain.VocabularyItem {
	t.Helper()
	item, err := domain.NewVocabularyItem(learnerID, nil, word, word+"-es", "")
	require.NoError(t, err)
	return item
}
