package service

import (
	"context"

	"expenseflow/internal/dto"
	"expenseflow/internal/repository"

	"go.uber.org/zap"
)

type SuggestionService struct {
	expenses    *repository.ExpenseRepository
	attachments *repository.AttachmentRepository
	suggestions *repository.SuggestionRepository
	suggester   Suggester
	logger      *zap.Logger
}

func NewSuggestionService(
	expenses *repository.ExpenseRepository,
	attachments *repository.AttachmentRepository,
	suggestions *repository.SuggestionRepository,
	suggester Suggester,
	logger *zap.Logger,
) *SuggestionService {
	return &SuggestionService{
		expenses:    expenses,
		attachments: attachments,
		suggestions: suggestions,
		suggester:   suggester,
		logger:      logger,
	}
}

func (s *SuggestionService) Categories() []string {
	categories := make([]string, len(ExpenseCategories))
	copy(categories, ExpenseCategories)
	return categories
}

// Suggest is the stateless variant: nothing is persisted, the caller gets
// the raw suggestion (or its error) back.
func (s *SuggestionService) Suggest(ctx context.Context, req *dto.SuggestRequest) *dto.SuggestionResult {
	return s.suggester.Suggest(ctx, req.Description, req.Amount)
}

// Approve resolves a pending suggestion. Per field, an accepted suggestion
// wins over a caller-supplied override; any override marks the suggestion
// user-modified. The outcome is mirrored onto the owning expense.
func (s *SuggestionService) Approve(ctx context.Context, expenseID, suggestionID int64, req *dto.ApprovalRequest) (*dto.ExpenseResponse, error) {
	suggestion, err := s.suggestions.GetByExpenseAndID(ctx, expenseID, suggestionID)
	if err != nil {
		return nil, err
	}

	expense, err := s.expenses.GetByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	if req.CategoryAccepted() {
		expense.Category = suggestion.SuggestedCategory
		suggestion.FinalCategory = suggestion.SuggestedCategory
	} else if req.CustomCategory != nil && *req.CustomCategory != "" {
		expense.Category = req.CustomCategory
		suggestion.FinalCategory = req.CustomCategory
		suggestion.UserModified = true
	}

	if req.NotesAccepted() {
		expense.ClientNotes = suggestion.SuggestedNotes
		suggestion.FinalNotes = suggestion.SuggestedNotes
	} else if req.CustomNotes != nil && *req.CustomNotes != "" {
		expense.ClientNotes = req.CustomNotes
		suggestion.FinalNotes = req.CustomNotes
		suggestion.UserModified = true
	}

	suggestion.WasAccepted = true

	if err := s.suggestions.Approve(ctx, suggestion, expense); err != nil {
		return nil, err
	}

	s.logger.Info("AI suggestion resolved",
		zap.Int64("expense_id", expenseID),
		zap.Int64("suggestion_id", suggestionID),
		zap.Bool("user_modified", suggestion.UserModified),
	)

	return buildExpenseResponse(ctx, expense, s.attachments, s.suggestions)
}
