package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/snapvocab/snapvocab-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestWithParam(name, value string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(name, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestGetPathUUID(t *testing.T) {
	t.Parallel()
	id := uuid.New()

	got, err := getPathUUID(requestWithParam("id", id.String()), "id")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = getPathUUID(requestWithParam("id", ""), "id")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = getPathUUID(requestWithParam("id", "123"), "id")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestParseDueItemsQuery(t *testing.T) {
	t.Parallel()

	q, err := parseDueItemsQuery(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Nil(t, q.Limit)
	assert.False(t, q.IncludeNew)
	assert.Nil(t, q.ListID)

	q, err = parseDueItemsQuery(httptest.NewRequest(http.MethodGet, "/?limit=0&include_new=1", nil))
	require.NoError(t, err)
	require.NotNil(t, q.Limit)
	assert.Zero(t, *q.Limit)
	assert.True(t, q.IncludeNew)

	_, err = parseDueItemsQuery(httptest.NewRequest(http.MethodGet, "/?limit=1.5", nil))
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "limit", vErr.Field)
}
