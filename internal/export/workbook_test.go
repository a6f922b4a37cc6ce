package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/snapvocab/snapvocab-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteWorkbook(t *testing.T) {
	t.Parallel()

	learnerID := uuid.New()
	item, err := domain.NewVocabularyItem(learnerID, nil, "apple", "manzana", "")
	require.NoError(t, err)
	next := time.Date(2026, 6, 19, 0, 0, 0, 0, time.UTC)
	item.ApplyResult(domain.SrsResult{
		SrsState:       domain.SrsState{EasinessFactor: 2.6, IntervalDays: 4, Repetitions: 1, CorrectStreak: 1},
		NextReviewDate: next,
	}, time.Date(2026, 6, 15, 10, 30, 0, 0, time.UTC))

	ms := 1500
	sessionID := uuid.New()
	attempt, err := domain.NewReviewAttempt(item.ID, learnerID, domain.RatingGood,
		domain.QuizModeTyping, &sessionID, &ms, nil, time.Date(2026, 6, 15, 10, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, []*domain.VocabularyItem{item}, []*domain.ReviewAttempt{attempt}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{AttemptsSheet, ItemsSheet}, f.GetSheetList())

	attemptRows, err := f.GetRows(AttemptsSheet)
	require.NoError(t, err)
	require.Len(t, attemptRows, 2)
	assert.Equal(t, "Attempt ID", attemptRows[0][0])
	row := attemptRows[1]
	assert.Equal(t, attempt.ID.String(), row[0])
	assert.Equal(t, "apple", row[2])
	assert.Equal(t, "good", row[3])
	assert.Equal(t, "yes", row[4])
	assert.Equal(t, "typing", row[5])
	assert.Equal(t, "1500", row[6])
	assert.Equal(t, sessionID.String(), row[7])
	assert.Equal(t, "2026-06-15T10:30:00Z", row[8])

	itemRows, err := f.GetRows(ItemsSheet)
	require.NoError(t, err)
	require.Len(t, itemRows, 2)
	row = itemRows[1]
	assert.Equal(t, item.ID.String(), row[0])
	assert.Equal(t, "apple", row[1])
	assert.Equal(t, "manzana", row[2])
	assert.Equal(t, "4", row[4])
	assert.Equal(t, "1", row[5])
	assert.Equal(t, "no", row[7])
	assert.Equal(t, "2026-06-19", row[8])
}

func TestWriteWorkbook_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, nil, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(AttemptsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = f.GetRows(ItemsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
