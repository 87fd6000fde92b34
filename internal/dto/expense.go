package dto

import (
	"errors"
	"strings"
	"time"

	"expenseflow/internal/models"
)

type ExpenseCreateRequest struct {
	Description         string     `json:"description"`
	Amount              float64    `json:"amount"`
	Date                *time.Time `json:"date,omitempty"`
	Category            *string    `json:"category,omitempty"`
	ClientNotes         *string    `json:"client_notes,omitempty"`
	RequestAISuggestion bool       `json:"request_ai_suggestion"`
}

func (r *ExpenseCreateRequest) Validate() error {
	if strings.TrimSpace(r.Description) == "" {
		return errors.New("description is required")
	}
	if r.Amount <= 0 {
		return errors.New("amount must be greater than zero")
	}
	return nil
}

// ExpenseUpdateRequest is a partial update: nil fields are left untouched.
type ExpenseUpdateRequest struct {
	Description *string    `json:"description,omitempty"`
	Amount      *float64   `json:"amount,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Category    *string    `json:"category,omitempty"`
	ClientNotes *string    `json:"client_notes,omitempty"`
}

func (r *ExpenseUpdateRequest) Validate() error {
	if r.Description != nil && strings.TrimSpace(*r.Description) == "" {
		return errors.New("description must not be empty")
	}
	if r.Amount != nil && *r.Amount <= 0 {
		return errors.New("amount must be greater than zero")
	}
	return nil
}

type ExpenseResponse struct {
	ID            int64                  `json:"id"`
	Description   string                 `json:"description"`
	Amount        float64                `json:"amount"`
	Date          string                 `json:"date"`
	Category      *string                `json:"category"`
	ClientNotes   *string                `json:"client_notes"`
	CreatedAt     string                 `json:"created_at"`
	UpdatedAt     string                 `json:"updated_at"`
	Attachments   []AttachmentResponse   `json:"attachments"`
	AISuggestions []AISuggestionResponse `json:"ai_suggestions"`
}

func NewExpenseResponse(e *models.Expense, attachments []*models.Attachment, suggestions []*models.AISuggestion) *ExpenseResponse {
	resp := &ExpenseResponse{
		ID:            e.ID,
		Description:   e.Description,
		Amount:        e.Amount,
		Date:          e.Date.Format(time.RFC3339),
		Category:      e.Category,
		ClientNotes:   e.ClientNotes,
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     e.UpdatedAt.Format(time.RFC3339),
		Attachments:   make([]AttachmentResponse, 0, len(attachments)),
		AISuggestions: make([]AISuggestionResponse, 0, len(suggestions)),
	}
	for _, a := range attachments {
		resp.Attachments = append(resp.Attachments, NewAttachmentResponse(a))
	}
	for _, s := range suggestions {
		resp.AISuggestions = append(resp.AISuggestions, NewAISuggestionResponse(s))
	}
	return resp
}
