package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"expenseflow/internal/dto"
	"expenseflow/internal/models"
	"expenseflow/internal/repository"

	"go.uber.org/zap"
)

type AttachmentService struct {
	expenses    *repository.ExpenseRepository
	attachments *repository.AttachmentRepository
	uploadDir   string
	logger      *zap.Logger
}

func NewAttachmentService(
	expenses *repository.ExpenseRepository,
	attachments *repository.AttachmentRepository,
	uploadDir string,
	logger *zap.Logger,
) *AttachmentService {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		logger.Warn("Failed to create upload directory", zap.Error(err))
	}

	return &AttachmentService{
		expenses:    expenses,
		attachments: attachments,
		uploadDir:   uploadDir,
		logger:      logger,
	}
}

// Upload writes the file into a per-expense directory under the upload root,
// keeping the original name, then records the attachment.
func (s *AttachmentService) Upload(ctx context.Context, expenseID int64, file io.Reader, filename, contentType string) (*dto.AttachmentResponse, error) {
	if _, err := s.expenses.GetByID(ctx, expenseID); err != nil {
		return nil, err
	}

	// Strip any client-supplied directory components
	name := filepath.Base(filename)

	dir := filepath.Join(s.uploadDir, strconv.FormatInt(expenseID, 10))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create expense directory: %w", err)
	}

	path := filepath.Join(dir, name)
	// Re-uploading the same name overwrites the file; an earlier record may
	// still point at it, so cleanup below must not remove it.
	_, statErr := os.Stat(path)
	overwrote := statErr == nil

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	size, err := io.Copy(dst, file)
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	attachment := &models.Attachment{
		ExpenseID:  expenseID,
		Filename:   name,
		FilePath:   path,
		FileSize:   size,
		UploadedAt: time.Now().UTC(),
	}
	if contentType != "" {
		attachment.ContentType = &contentType
	}

	if err := s.attachments.Create(ctx, attachment); err != nil {
		if !overwrote {
			os.Remove(path)
		}
		return nil, fmt.Errorf("failed to create attachment record: %w", err)
	}

	resp := dto.NewAttachmentResponse(attachment)
	return &resp, nil
}

// Get returns the attachment scoped to its expense, verifying the backing
// file still exists. A missing file reads as not found.
func (s *AttachmentService) Get(ctx context.Context, expenseID, id int64) (*models.Attachment, error) {
	attachment, err := s.attachments.GetByExpenseAndID(ctx, expenseID, id)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(attachment.FilePath); err != nil {
		s.logger.Warn("Attachment file missing on disk",
			zap.Int64("attachment_id", attachment.ID),
			zap.String("path", attachment.FilePath),
		)
		return nil, repository.ErrNotFound
	}

	return attachment, nil
}

// Delete removes the backing file (a file already gone is a no-op) and then
// the record.
func (s *AttachmentService) Delete(ctx context.Context, expenseID, id int64) error {
	attachment, err := s.attachments.GetByExpenseAndID(ctx, expenseID, id)
	if err != nil {
		return err
	}

	if err := os.Remove(attachment.FilePath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("Failed to remove attachment file",
			zap.String("path", attachment.FilePath),
			zap.Error(err),
		)
	}

	return s.attachments.Delete(ctx, expenseID, id)
}
