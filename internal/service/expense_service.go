package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"expenseflow/internal/dto"
	"expenseflow/internal/models"
	"expenseflow/internal/repository"

	"go.uber.org/zap"
)

const defaultListLimit = 100

type ExpenseService struct {
	expenses    *repository.ExpenseRepository
	attachments *repository.AttachmentRepository
	suggestions *repository.SuggestionRepository
	suggester   Suggester
	logger      *zap.Logger
}

func NewExpenseService(
	expenses *repository.ExpenseRepository,
	attachments *repository.AttachmentRepository,
	suggestions *repository.SuggestionRepository,
	suggester Suggester,
	logger *zap.Logger,
) *ExpenseService {
	return &ExpenseService{
		expenses:    expenses,
		attachments: attachments,
		suggestions: suggestions,
		suggester:   suggester,
		logger:      logger,
	}
}

// Create stores a new expense. When the caller asked for an AI suggestion,
// one is generated and stored as a side effect; an AI failure is logged and
// never fails the create.
func (s *ExpenseService) Create(ctx context.Context, req *dto.ExpenseCreateRequest) (*dto.ExpenseResponse, error) {
	now := time.Now().UTC()
	date := now
	if req.Date != nil {
		date = req.Date.UTC()
	}

	expense := &models.Expense{
		Description: req.Description,
		Amount:      req.Amount,
		Date:        date,
		Category:    req.Category,
		ClientNotes: req.ClientNotes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.expenses.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	if req.RequestAISuggestion {
		result := s.suggester.Suggest(ctx, req.Description, req.Amount)
		if result.Error != "" {
			s.logger.Warn("AI suggestion skipped",
				zap.Int64("expense_id", expense.ID),
				zap.String("reason", result.Error),
			)
		} else {
			suggestion := &models.AISuggestion{
				ExpenseID:         expense.ID,
				SuggestedCategory: result.Category,
				SuggestedNotes:    result.ClientNotes,
				CreatedAt:         time.Now().UTC(),
				ModelUsed:         s.suggester.Model(),
			}
			if err := s.suggestions.Create(ctx, suggestion); err != nil {
				s.logger.Warn("Failed to store AI suggestion",
					zap.Int64("expense_id", expense.ID),
					zap.Error(err),
				)
			}
		}
	}

	return buildExpenseResponse(ctx, expense, s.attachments, s.suggestions)
}

func (s *ExpenseService) Get(ctx context.Context, id int64) (*dto.ExpenseResponse, error) {
	expense, err := s.expenses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return buildExpenseResponse(ctx, expense, s.attachments, s.suggestions)
}

func (s *ExpenseService) List(ctx context.Context, skip, limit int) ([]*dto.ExpenseResponse, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	expenses, err := s.expenses.List(ctx, skip, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(expenses))
	for i, e := range expenses {
		ids[i] = e.ID
	}

	attachmentsByID, err := s.attachments.ListByExpenseIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	suggestionsByID, err := s.suggestions.ListByExpenseIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.ExpenseResponse, len(expenses))
	for i, e := range expenses {
		responses[i] = dto.NewExpenseResponse(e, attachmentsByID[e.ID], suggestionsByID[e.ID])
	}
	return responses, nil
}

// Update applies a partial update: only fields present in the request change.
func (s *ExpenseService) Update(ctx context.Context, id int64, req *dto.ExpenseUpdateRequest) (*dto.ExpenseResponse, error) {
	expense, err := s.expenses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		expense.Description = *req.Description
	}
	if req.Amount != nil {
		expense.Amount = *req.Amount
	}
	if req.Date != nil {
		expense.Date = req.Date.UTC()
	}
	if req.Category != nil {
		expense.Category = req.Category
	}
	if req.ClientNotes != nil {
		expense.ClientNotes = req.ClientNotes
	}
	expense.UpdatedAt = time.Now().UTC()

	if err := s.expenses.Update(ctx, expense); err != nil {
		return nil, err
	}

	return buildExpenseResponse(ctx, expense, s.attachments, s.suggestions)
}

// Delete removes the expense, its suggestions and attachment records in one
// transaction, then removes the backing files best-effort.
func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	filePaths, err := s.expenses.Delete(ctx, id)
	if err != nil {
		return err
	}

	for _, path := range filePaths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("Failed to remove attachment file",
				zap.String("path", path),
				zap.Error(err),
			)
		}
	}
	// Drop the now-empty per-expense directory, if any
	if len(filePaths) > 0 {
		_ = os.Remove(filepath.Dir(filePaths[0]))
	}

	return nil
}

func buildExpenseResponse(
	ctx context.Context,
	expense *models.Expense,
	attachments *repository.AttachmentRepository,
	suggestions *repository.SuggestionRepository,
) (*dto.ExpenseResponse, error) {
	atts, err := attachments.ListByExpenseID(ctx, expense.ID)
	if err != nil {
		return nil, err
	}
	sugs, err := suggestions.ListByExpenseID(ctx, expense.ID)
	if err != nil {
		return nil, err
	}
	return dto.NewExpenseResponse(expense, atts, sugs), nil
}
