package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/snapvocab/snapvocab-api/internal/domain"
)

// RecordAttemptRequest is the body of POST /api/items/{id}/attempts.
type RecordAttemptRequest struct {
	Rating         int     `json:"rating"                     validate:"required,min=1,max=4"`
	SessionID      *string `json:"session_id,omitempty"       validate:"omitempty,uuid"`
	QuizMode       string  `json:"quiz_mode,omitempty"        validate:"omitempty,oneof=flashcard multiple_choice typing listening photo"`
	ResponseTimeMs *int    `json:"response_time_ms,omitempty" validate:"omitempty,min=0"`
	// RequestID makes retries of the same submission safe.
	RequestID *string `json:"request_id,omitempty" validate:"omitempty,uuid"`
}

// PreviewRequest is the body of POST /api/items/{id}/preview.
type PreviewRequest struct {
	Rating int `json:"rating" validate:"required,min=1,max=4"`
}

// ItemResponse is the JSON form of a vocabulary item and its schedule.
type ItemResponse struct {
	ID             string     `json:"id"`
	ListID         *string    `json:"list_id,omitempty"`
	Word           string     `json:"word"`
	Translation    string     `json:"translation"`
	ImageURL       string     `json:"image_url,omitempty"`
	EasinessFactor float64    `json:"easiness_factor"`
	IntervalDays   int        `json:"interval_days"`
	Repetitions    int        `json:"repetitions"`
	CorrectStreak  int        `json:"correct_streak"`
	NextReviewDate *string    `json:"next_review_date,omitempty"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	IsLearned      bool       `json:"is_learned"`
	CreatedAt      time.Time  `json:"created_at"`
}

// AttemptResponse is the JSON form of a stored review attempt.
type AttemptResponse struct {
	ID             string    `json:"id"`
	ItemID         string    `json:"item_id"`
	SessionID      *string   `json:"session_id,omitempty"`
	QuizMode       string    `json:"quiz_mode,omitempty"`
	Rating         int       `json:"rating"`
	IsCorrect      bool      `json:"is_correct"`
	ResponseTimeMs *int      `json:"response_time_ms,omitempty"`
	RequestID      *string   `json:"request_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// RecordAttemptResponse is returned after a rating has been applied.
type RecordAttemptResponse struct {
	Item      ItemResponse    `json:"item"`
	Attempt   AttemptResponse `json:"attempt"`
	IsCorrect bool            `json:"is_correct"`
	Replayed  bool            `json:"replayed"`
}

// DueItemsResponse is the learner's review queue.
type DueItemsResponse struct {
	Items []ItemResponse `json:"items"`
	Count int            `json:"count"`
}

// PreviewResponse is the schedule a rating would produce.
type PreviewResponse struct {
	EasinessFactor float64 `json:"easiness_factor"`
	IntervalDays   int     `json:"interval_days"`
	Repetitions    int     `json:"repetitions"`
	CorrectStreak  int     `json:"correct_streak"`
	NextReviewDate string  `json:"next_review_date"`
	IsLearned      bool    `json:"is_learned"`
}

func itemToResponse(item *domain.VocabularyItem) ItemResponse {
	resp := ItemResponse{
		ID:             item.ID.String(),
		ListID:         uuidString(item.ListID),
		Word:           item.Word,
		Translation:    item.Translation,
		ImageURL:       item.ImageURL,
		EasinessFactor: item.EasinessFactor,
		IntervalDays:   item.IntervalDays,
		Repetitions:    item.Repetitions,
		CorrectStreak:  item.CorrectStreak,
		LastReviewedAt: item.LastReviewedAt,
		IsLearned:      item.IsLearned,
		CreatedAt:      item.CreatedAt,
	}
	if item.NextReviewDate != nil {
		date := item.NextReviewDate.Format(time.DateOnly)
		resp.NextReviewDate = &date
	}
	return resp
}

func itemsToResponse(items []*domain.VocabularyItem) []ItemResponse {
	resp := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, itemToResponse(item))
	}
	return resp
}

func attemptToResponse(a *domain.ReviewAttempt) AttemptResponse {
	return AttemptResponse{
		ID:             a.ID.String(),
		ItemID:         a.ItemID.String(),
		SessionID:      uuidString(a.SessionID),
		QuizMode:       string(a.QuizMode),
		Rating:         int(a.Rating),
		IsCorrect:      a.IsCorrect,
		ResponseTimeMs: a.ResponseTimeMs,
		RequestID:      uuidString(a.RequestID),
		CreatedAt:      a.CreatedAt,
	}
}

func previewToResponse(r domain.SrsResult) PreviewResponse {
	return PreviewResponse{
		EasinessFactor: r.EasinessFactor,
		IntervalDays:   r.IntervalDays,
		Repetitions:    r.Repetitions,
		CorrectStreak:  r.CorrectStreak,
		NextReviewDate: r.NextReviewDate.Format(time.DateOnly),
		IsLearned:      r.IsLearned,
	}
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

// parseOptionalUUID parses s when it is set. Callers validate the format first.
func parseOptionalUUID(s *string) *uuid.UUID {
	if s == nil || *s == "" {
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil
	}
	return &id
}
