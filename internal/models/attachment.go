package models

import "time"

type Attachment struct {
	ID          int64     `db:"id"`
	ExpenseID   int64     `db:"expense_id"`
	Filename    string    `db:"filename"`
	FilePath    string    `db:"file_path"`
	ContentType *string   `db:"content_type"`
	FileSize    int64     `db:"file_size"`
	UploadedAt  time.Time `db:"uploaded_at"`
}
