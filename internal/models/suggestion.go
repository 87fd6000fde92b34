package models

import "time"

// AISuggestion is created when a suggestion is generated for a stored
// expense. It stays pending until the approval endpoint resolves it; the
// final_* columns record what was actually applied to the expense.
type AISuggestion struct {
	ID                int64     `db:"id"`
	ExpenseID         int64     `db:"expense_id"`
	SuggestedCategory *string   `db:"suggested_category"`
	SuggestedNotes    *string   `db:"suggested_notes"`
	WasAccepted       bool      `db:"was_accepted"`
	UserModified      bool      `db:"user_modified"`
	FinalCategory     *string   `db:"final_category"`
	FinalNotes        *string   `db:"final_notes"`
	CreatedAt         time.Time `db:"created_at"`
	ModelUsed         string    `db:"model_used"`
}
