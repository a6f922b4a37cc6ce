package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/snapvocab/snapvocab-api/internal/api/shared"
	"github.com/snapvocab/snapvocab-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceMiddleware(t *testing.T) {
	t.Parallel()
	buf, log := logger.NewTestLogger(t)

	var traceID string
	handler := NewTraceMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.NotEmpty(t, traceID)
	assert.Equal(t, traceID, w.Header().Get("X-Trace-ID"))

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "inside handler", entries[0]["msg"])
	assert.Equal(t, traceID, entries[0]["trace_id"])
	assert.Equal(t, "request completed", entries[1]["msg"])
	assert.EqualValues(t, http.StatusTeapot, entries[1]["status"])
}

func TestTraceMiddleware_UsesChiRequestID(t *testing.T) {
	t.Parallel()
	_, log := logger.NewTestLogger(t)

	var traceID, requestID string
	handler := chimiddleware.RequestID(NewTraceMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		requestID = chimiddleware.GetReqID(r.Context())
	})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, requestID)
	assert.Equal(t, requestID, traceID)
}
