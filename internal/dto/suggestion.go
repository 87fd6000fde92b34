package dto

import (
	"errors"
	"strings"
	"time"

	"expenseflow/internal/models"
)

type SuggestRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

func (r *SuggestRequest) Validate() error {
	if strings.TrimSpace(r.Description) == "" {
		return errors.New("description is required")
	}
	if r.Amount <= 0 {
		return errors.New("amount must be greater than zero")
	}
	return nil
}

// SuggestionResult is the AI client's answer. External failures never bubble
// up as HTTP errors: they land in Error while category/notes stay null.
type SuggestionResult struct {
	Category    *string `json:"category"`
	ClientNotes *string `json:"client_notes"`
	Error       string  `json:"error,omitempty"`
}

// ApprovalRequest resolves a pending suggestion. Absent accept flags mean
// accept; an accept flag set to true wins over a custom value.
type ApprovalRequest struct {
	AcceptCategory *bool   `json:"accept_category"`
	AcceptNotes    *bool   `json:"accept_notes"`
	CustomCategory *string `json:"custom_category,omitempty"`
	CustomNotes    *string `json:"custom_notes,omitempty"`
}

func (r *ApprovalRequest) CategoryAccepted() bool {
	return r.AcceptCategory == nil || *r.AcceptCategory
}

func (r *ApprovalRequest) NotesAccepted() bool {
	return r.AcceptNotes == nil || *r.AcceptNotes
}

type AISuggestionResponse struct {
	ID                int64   `json:"id"`
	ExpenseID         int64   `json:"expense_id"`
	SuggestedCategory *string `json:"suggested_category"`
	SuggestedNotes    *string `json:"suggested_notes"`
	WasAccepted       bool    `json:"was_accepted"`
	UserModified      bool    `json:"user_modified"`
	FinalCategory     *string `json:"final_category"`
	FinalNotes        *string `json:"final_notes"`
	CreatedAt         string  `json:"created_at"`
	ModelUsed         string  `json:"model_used"`
}

func NewAISuggestionResponse(s *models.AISuggestion) AISuggestionResponse {
	return AISuggestionResponse{
		ID:                s.ID,
		ExpenseID:         s.ExpenseID,
		SuggestedCategory: s.SuggestedCategory,
		SuggestedNotes:    s.SuggestedNotes,
		WasAccepted:       s.WasAccepted,
		UserModified:      s.UserModified,
		FinalCategory:     s.FinalCategory,
		FinalNotes:        s.FinalNotes,
		CreatedAt:         s.CreatedAt.Format(time.RFC3339),
		ModelUsed:         s.ModelUsed,
	}
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}
