package models

import "time"

type Expense struct {
	ID          int64     `db:"id"`
	Description string    `db:"description"`
	Amount      float64   `db:"amount"`
	Date        time.Time `db:"date"`
	Category    *string   `db:"category"`
	ClientNotes *string   `db:"client_notes"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
