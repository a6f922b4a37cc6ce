package api

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/snapvocab/snapvocab-api/internal/clock"
	"github.com/snapvocab/snapvocab-api/internal/export"
	"github.com/snapvocab/snapvocab-api/internal/platform/logger"
	"github.com/snapvocab/snapvocab-api/internal/service/review"
)

// ExportHandler serves the learner's review history as a spreadsheet.
type ExportHandler struct {
	reviewService review.ReviewService
	clock         clock.Clock
	logger        *slog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(reviewService review.ReviewService, clk clock.Clock, logger *slog.Logger) *ExportHandler {
	if reviewService == nil {
		panic("reviewService cannot be nil for ExportHandler")
	}
	if clk == nil {
		panic("clock cannot be nil for ExportHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for ExportHandler")
	}

	return &ExportHandler{
		reviewService: reviewService,
		clock:         clk,
		logger:        logger.With(slog.String("component", "export_handler")),
	}
}

// ExportAttempts handles GET /api/attempts/export.
func (h *ExportHandler) ExportAttempts(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, ok := requireLearnerID(w, r, log)
	if !ok {
		return
	}

	items, err := h.reviewService.ListItems(r.Context(), learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to export attempts")
		return
	}
	attempts, err := h.reviewService.ListAttempts(r.Context(), learnerID, 0)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to export attempts")
		return
	}

	// Rendered into memory first so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, items, attempts); err != nil {
		HandleAPIError(w, r, err, "Failed to export attempts")
		return
	}

	filename := fmt.Sprintf("snapvocab-export-%s.xlsx", h.clock.Today().Format(time.DateOnly))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Warn("failed to write export", slog.String("error", err.Error()))
		return
	}

	log.Debug("exported review history",
		slog.Int("items", len(items)),
		slog.Int("attempts", len(attempts)))
}
