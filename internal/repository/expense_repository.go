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

var expenseColumns = []string{"id", "description", "amount", "date", "category", "client_notes", "created_at", "updated_at"}

type ExpenseRepository struct {
	db     *database.DB
	logger *zap.Logger
}

func NewExpenseRepository(db *database.DB, logger *zap.Logger) *ExpenseRepository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	query := r.db.Builder.Insert("expenses").
		Columns("description", "amount", "date", "category", "client_notes", "created_at", "updated_at").
		Values(expense.Description, expense.Amount, expense.Date, expense.Category, expense.ClientNotes, expense.CreatedAt, expense.UpdatedAt)

	id, err := r.db.InsertWithID(ctx, r.db, query)
	if err != nil {
		return err
	}

	expense.ID = id
	return nil
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*models.Expense, error) {
	query := r.db.Builder.Select(expenseColumns...).
		From("expenses").
		Where(squirrel.Eq{"id": id})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	expense, err := scanExpense(r.db.QueryRowContext(ctx, sqlStr, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return expense, err
}

func (r *ExpenseRepository) List(ctx context.Context, skip, limit int) ([]*models.Expense, error) {
	query := r.db.Builder.Select(expenseColumns...).
		From("expenses").
		OrderBy("id ASC").
		Limit(uint64(limit)).
		Offset(uint64(skip))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}

	return expenses, rows.Err()
}

func (r *ExpenseRepository) Update(ctx context.Context, expense *models.Expense) error {
	query := r.db.Builder.Update("expenses").
		Set("description", expense.Description).
		Set("amount", expense.Amount).
		Set("date", expense.Date).
		Set("category", expense.Category).
		Set("client_notes", expense.ClientNotes).
		Set("updated_at", expense.UpdatedAt).
		Where(squirrel.Eq{"id": expense.ID})

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

// Delete removes the expense together with its suggestions and attachment
// records in one transaction. It returns the storage paths of the deleted
// attachments so the caller can remove the backing files after commit.
func (r *ExpenseRepository) Delete(ctx context.Context, id int64) ([]string, error) {
	var filePaths []string

	err := r.db.WithinTx(ctx, func(tx *sql.Tx) error {
		pathQuery := r.db.Builder.Select("file_path").
			From("attachments").
			Where(squirrel.Eq{"expense_id": id})

		sqlStr, args, err := pathQuery.ToSql()
		if err != nil {
			return err
		}

		rows, err := tx.QueryContext(ctx, sqlStr, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var path string
			if err := rows.Scan(&path); err != nil {
				return err
			}
			filePaths = append(filePaths, path)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		for _, table := range []string{"ai_suggestions", "attachments"} {
			del := r.db.Builder.Delete(table).Where(squirrel.Eq{"expense_id": id})
			sqlStr, args, err := del.ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
				return err
			}
		}

		del := r.db.Builder.Delete("expenses").Where(squirrel.Eq{"id": id})
		sqlStr, args, err = del.ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, sqlStr, args...)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return filePaths, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	var e models.Expense
	err := row.Scan(&e.ID, &e.Description, &e.Amount, &e.Date, &e.Category, &e.ClientNotes, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
