package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"expenseflow/internal/models"
	"expenseflow/pkg/database"

	"github.com/Masterminds/squirrel"
	"go.uber.org/zap"
)

var suggestionColumns = []string{"id", "expense_id", "suggested_category", "suggested_notes", "was_accepted", "user_modified", "final_category", "final_notes", "created_at", "model_used"}

type SuggestionRepository struct {
	db     *database.DB
	logger *zap.Logger
}

func NewSuggestionRepository(db *database.DB, logger *zap.Logger) *SuggestionRepository {
	return &SuggestionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *SuggestionRepository) Create(ctx context.Context, suggestion *models.AISuggestion) error {
	query := r.db.Builder.Insert("ai_suggestions").
		Columns("expense_id", "suggested_category", "suggested_notes", "was_accepted", "user_modified", "final_category", "final_notes", "created_at", "model_used").
		Values(suggestion.ExpenseID, suggestion.SuggestedCategory, suggestion.SuggestedNotes, suggestion.WasAccepted, suggestion.UserModified, suggestion.FinalCategory, suggestion.FinalNotes, suggestion.CreatedAt, suggestion.ModelUsed)

	id, err := r.db.InsertWithID(ctx, r.db, query)
	if err != nil {
		return err
	}

	suggestion.ID = id
	return nil
}

func (r *SuggestionRepository) GetByExpenseAndID(ctx context.Context, expenseID, id int64) (*models.AISuggestion, error) {
	query := r.db.Builder.Select(suggestionColumns...).
		From("ai_suggestions").
		Where(squirrel.Eq{"id": id, "expense_id": expenseID})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	suggestion, err := scanSuggestion(r.db.QueryRowContext(ctx, sqlStr, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return suggestion, err
}

func (r *SuggestionRepository) ListByExpenseID(ctx context.Context, expenseID int64) ([]*models.AISuggestion, error) {
	byExpense, err := r.ListByExpenseIDs(ctx, []int64{expenseID})
	if err != nil {
		return nil, err
	}
	return byExpense[expenseID], nil
}

func (r *SuggestionRepository) ListByExpenseIDs(ctx context.Context, expenseIDs []int64) (map[int64][]*models.AISuggestion, error) {
	byExpense := make(map[int64][]*models.AISuggestion)
	if len(expenseIDs) == 0 {
		return byExpense, nil
	}

	query := r.db.Builder.Select(suggestionColumns...).
		From("ai_suggestions").
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
		suggestion, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		byExpense[suggestion.ExpenseID] = append(byExpense[suggestion.ExpenseID], suggestion)
	}

	return byExpense, rows.Err()
}

// Approve persists a resolved suggestion and mirrors the final values onto
// the owning expense inside a single transaction.
func (r *SuggestionRepository) Approve(ctx context.Context, suggestion *models.AISuggestion, expense *models.Expense) error {
	return r.db.WithinTx(ctx, func(tx *sql.Tx) error {
		update := r.db.Builder.Update("ai_suggestions").
			Set("was_accepted", suggestion.WasAccepted).
			Set("user_modified", suggestion.UserModified).
			Set("final_category", suggestion.FinalCategory).
			Set("final_notes", suggestion.FinalNotes).
			Where(squirrel.Eq{"id": suggestion.ID, "expense_id": suggestion.ExpenseID})

		sqlStr, args, err := update.ToSql()
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

		expense.UpdatedAt = time.Now().UTC()
		expUpdate := r.db.Builder.Update("expenses").
			Set("category", expense.Category).
			Set("client_notes", expense.ClientNotes).
			Set("updated_at", expense.UpdatedAt).
			Where(squirrel.Eq{"id": expense.ID})

		sqlStr, args, err = expUpdate.ToSql()
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, sqlStr, args...)
		return err
	})
}

func scanSuggestion(row rowScanner) (*models.AISuggestion, error) {
	var s models.AISuggestion
	err := row.Scan(
		&s.ID, &s.ExpenseID, &s.SuggestedCategory, &s.SuggestedNotes, &s.WasAccepted,
		&s.UserModified, &s.FinalCategory, &s.FinalNotes, &s.CreatedAt, &s.ModelUsed,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
