package dto

import (
	"time"

	"expenseflow/internal/models"
)

type AttachmentResponse struct {
	ID          int64   `json:"id"`
	ExpenseID   int64   `json:"expense_id"`
	Filename    string  `json:"filename"`
	ContentType *string `json:"content_type"`
	FileSize    int64   `json:"file_size"`
	UploadedAt  string  `json:"uploaded_at"`
}

func NewAttachmentResponse(a *models.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:          a.ID,
		ExpenseID:   a.ExpenseID,
		Filename:    a.Filename,
		ContentType: a.ContentType,
		FileSize:    a.FileSize,
		UploadedAt:  a.UploadedAt.Format(time.RFC3339),
	}
}
