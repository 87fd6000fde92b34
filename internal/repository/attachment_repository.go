package repository

import (
	"context"
	"database/sql"
	"errors"

	"expenseflow/internal/models"
	"expenseflow/pkg/database"

	"github.com/Masterminds/squirrel"
	"go.uber.org/zap"
)

var attachmentColumns = []string{"id", "expense_id", "filename", "file_path", "content_type", "file_size", "uploaded_at"}

type AttachmentRepository struct {
	db     *database.DB
	logger *zap.Logger
}

func NewAttachmentRepository(db *database.DB, logger *zap.Logger) *AttachmentRepository {
	return &AttachmentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *AttachmentRepository) Create(ctx context.Context, attachment *models.Attachment) error {
	query := r.db.Builder.Insert("attachments").
		Columns("expense_id", "filename", "file_path", "content_type", "file_size", "uploaded_at").
		Values(attachment.ExpenseID, attachment.Filename, attachment.FilePath, attachment.ContentType, attachment.FileSize, attachment.UploadedAt)

	id, err := r.db.InsertWithID(ctx, r.db, query)
	if err != nil {
		return err
	}

	attachment.ID = id
	return nil
}

// GetByExpenseAndID looks an attachment up scoped to its owning expense, so
// an id that exists under a different expense still yields ErrNotFound.
func (r *AttachmentRepository) GetByExpenseAndID(ctx context.Context, expenseID, id int64) (*models.Attachment, error) {
	query := r.db.Builder.Select(attachmentColumns...).
		From("attachments").
		Where(squirrel.Eq{"id": id, "expense_id": expenseID})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var a models.Attachment
	err = r.db.QueryRowContext(ctx, sqlStr, args...).Scan(
		&a.ID, &a.ExpenseID, &a.Filename, &a.FilePath, &a.ContentType, &a.FileSize, &a.UploadedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &a, nil
}

func (r *AttachmentRepository) ListByExpenseID(ctx context.Context, expenseID int64) ([]*models.Attachment, error) {
	byExpense, err := r.ListByExpenseIDs(ctx, []int64{expenseID})
	if err != nil {
		return nil, err
	}
	return byExpense[expenseID], nil
}

func (r *AttachmentRepository) ListByExpenseIDs(ctx context.Context, expenseIDs []int64) (map[int64][]*models.Attachment, error) {
	byExpense := make(map[int64][]*models.Attachment)
	if len(expenseIDs) == 0 {
		return byExpense, nil
	}

	query := r.db.Builder.Select(attachmentColumns...).
		From("attachments").
		Where(squirrel.Eq{"expense_id": expenseIDs}).
		OrderBy("id ASC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var a models.Attachment
		if err := rows.Scan(
			&a.ID, &a.ExpenseID, &a.Filename, &a.FilePath, &a.ContentType, &a.FileSize, &a.UploadedAt,
		); err != nil {
			return nil, err
		}
		byExpense[a.ExpenseID] = append(byExpense[a.ExpenseID], &a)
	}

	return byExpense, rows.Err()
}

func (r *AttachmentRepository) Delete(ctx context.Context, expenseID, id int64) error {
	query := r.db.Builder.Delete("attachments").
		Where(squirrel.Eq{"id": id, "expense_id": expenseID})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
