// Package export renders a learner's review history as an XLSX workbook.
package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/snapvocab/snapvocab-api/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Sheet names in the exported workbook.
const (
	AttemptsSheet = "Attempts"
	ItemsSheet    = "Items"
)

const defaultSheet = "Sheet1"

// ContentType is the MIME type of the exported workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var attemptHeader = []interface{}{
	"Attempt ID", "Item ID", "Word", "Rating", "Correct", "Quiz Mode",
	"Response Time (ms)", "Session ID", "Recorded At",
}

var itemHeader = []interface{}{
	"Item ID", "Word", "Translation", "Easiness Factor", "Interval (days)",
	"Repetitions", "Correct Streak", "Learned", "Next Review", "Last Reviewed",
}

// WriteWorkbook writes items and attempts to w as an XLSX workbook with one
// sheet each. Attempts keep the order they are given in.
func WriteWorkbook(w io.Writer, items []*domain.VocabularyItem, attempts []*domain.ReviewAttempt) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(defaultSheet, AttemptsSheet)
	if _, err := f.NewSheet(ItemsSheet); err != nil {
		return fmt.Errorf("failed to create %s sheet: %w", ItemsSheet, err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	words := make(map[string]string, len(items))
	for _, item := range items {
		words[item.ID.String()] = item.Word
	}

	if err := writeRows(f, AttemptsSheet, header, attemptHeader, len(attempts), func(i int) []interface{} {
		return attemptRow(attempts[i], words)
	}); err != nil {
		return err
	}
	if err := writeRows(f, ItemsSheet, header, itemHeader, len(items), func(i int) []interface{} {
		return itemRow(items[i])
	}); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRows(
	f *excelize.File,
	sheet string,
	headerStyle int,
	header []interface{},
	n int,
	row func(i int) []interface{},
) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for i := 0; i < n; i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row(i)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 18)
}

func attemptRow(a *domain.ReviewAttempt, words map[string]string) []interface{} {
	return []interface{}{
		a.ID.String(),
		a.ItemID.String(),
		words[a.ItemID.String()],
		a.Rating.String(),
		yesNo(a.IsCorrect),
		string(a.QuizMode),
		optionalInt(a.ResponseTimeMs),
		optionalUUID(a.SessionID),
		a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func itemRow(item *domain.VocabularyItem) []interface{} {
	return []interface{}{
		item.ID.String(),
		item.Word,
		item.Translation,
		item.EasinessFactor,
		item.IntervalDays,
		item.Repetitions,
		item.CorrectStreak,
		yesNo(item.IsLearned),
		optionalTime(item.NextReviewDate, time.DateOnly),
		optionalTime(item.LastReviewedAt, time.RFC3339),
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optionalUUID(v *uuid.UUID) string {
	if v == nil {
		return ""
	}
	return v.String()
}

func optionalTime(t *time.Time, layout string) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(layout)
}
