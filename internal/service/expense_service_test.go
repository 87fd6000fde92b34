package service

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"expenseflow/internal/dto"
	"expenseflow/internal/repository"
	"expenseflow/pkg/config"
	"expenseflow/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSuggester struct {
	result *dto.SuggestionResult
	calls  int
}

func (s *stubSuggester) Suggest(_ context.Context, _ string, _ float64) *dto.SuggestionResult {
	s.calls++
	if s.result != nil {
		return s.result
	}
	return &dto.SuggestionResult{}
}

func (s *stubSuggester) Model() string { return "stub-model" }

type serviceFixture struct {
	db          *database.DB
	expenses    *ExpenseService
	attachments *AttachmentService
	suggestions *SuggestionService
	suggester   *stubSuggester
	uploadDir   string
}

func newServiceFixture(t *testing.T, result *dto.SuggestionResult) *serviceFixture {
	t.Helper()

	db, err := database.Open(context.Background(), &config.DatabaseConfig{DSN: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := zap.NewNop()
	expenseRepo := repository.NewExpenseRepository(db, logger)
	attachmentRepo := repository.NewAttachmentRepository(db, logger)
	suggestionRepo := repository.NewSuggestionRepository(db, logger)

	suggester := &stubSuggester{result: result}
	uploadDir := t.TempDir()
	attachmentSvc := NewAttachmentService(expenseRepo, attachmentRepo, uploadDir, logger)

	return &serviceFixture{
		db:          db,
		expenses:    NewExpenseService(expenseRepo, attachmentRepo, suggestionRepo, suggester, logger),
		attachments: attachmentSvc,
		suggestions: NewSuggestionService(expenseRepo, attachmentRepo, suggestionRepo, suggester, logger),
		suggester:   suggester,
		uploadDir:   uploadDir,
	}
}

func strPtr(s string) *string { return &s }

func TestCreateWithAISuggestion(t *testing.T) {
	fix := newServiceFixture(t, &dto.SuggestionResult{
		Category:    strPtr("Meals & Entertainment"),
		ClientNotes: strPtr("Coffee meeting with client."),
	})

	resp, err := fix.expenses.Create(context.Background(), &dto.ExpenseCreateRequest{
		Description:         "Coffee meeting",
		Amount:              15.50,
		RequestAISuggestion: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 15.50, resp.Amount)
	assert.Equal(t, 1, fix.suggester.calls)
	require.Len(t, resp.AISuggestions, 1)
	got := resp.AISuggestions[0]
	require.NotNil(t, got.SuggestedCategory)
	assert.Equal(t, "Meals & Entertainment", *got.SuggestedCategory)
	assert.Equal(t, "stub-model", got.ModelUsed)
	assert.False(t, got.WasAccepted)
}

func TestCreateWithFailedAISuggestion(t *testing.T) {
	fix := newServiceFixture(t, &dto.SuggestionResult{Error: "could not parse AI response"})

	resp, err := fix.expenses.Create(context.Background(), &dto.ExpenseCreateRequest{
		Description:         "Taxi",
		Amount:              23.40,
		RequestAISuggestion: true,
	})
	require.NoError(t, err, "AI failure must not fail the create")
	assert.Empty(t, resp.AISuggestions)
}

func TestCreateWithoutAISuggestion(t *testing.T) {
	fix := newServiceFixture(t, nil)

	resp, err := fix.expenses.Create(context.Background(), &dto.ExpenseCreateRequest{
		Description: "Taxi",
		Amount:      23.40,
	})
	require.NoError(t, err)
	assert.Zero(t, fix.suggester.calls)
	assert.Empty(t, resp.AISuggestions)
}

func TestCreateDefaultsDate(t *testing.T) {
	fix := newServiceFixture(t, nil)

	before := time.Now().UTC()
	resp, err := fix.expenses.Create(context.Background(), &dto.ExpenseCreateRequest{
		Description: "Taxi",
		Amount:      23.40,
	})
	require.NoError(t, err)

	date, err := time.Parse(time.RFC3339, resp.Date)
	require.NoError(t, err)
	assert.WithinDuration(t, before, date, 5*time.Second)
}

func TestPartialUpdate(t *testing.T) {
	fix := newServiceFixture(t, nil)
	ctx := context.Background()

	created, err := fix.expenses.Create(ctx, &dto.ExpenseCreateRequest{
		Description: "Taxi",
		Amount:      23.40,
		Category:    strPtr("Travel"),
	})
	require.NoError(t, err)

	amount := 25.00
	updated, err := fix.expenses.Update(ctx, created.ID, &dto.ExpenseUpdateRequest{Amount: &amount})
	require.NoError(t, err)

	assert.Equal(t, 25.00, updated.Amount)
	assert.Equal(t, "Taxi", updated.Description, "omitted fields keep their value")
	require.NotNil(t, updated.Category)
	assert.Equal(t, "Travel", *updated.Category)
}

func TestUpdateMissingExpense(t *testing.T) {
	fix := newServiceFixture(t, nil)

	amount := 1.0
	_, err := fix.expenses.Update(context.Background(), 9999, &dto.ExpenseUpdateRequest{Amount: &amount})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteRemovesAttachmentFiles(t *testing.T) {
	fix := newServiceFixture(t, nil)
	ctx := context.Background()

	created, err := fix.expenses.Create(ctx, &dto.ExpenseCreateRequest{
		Description: "Team lunch",
		Amount:      84.00,
	})
	require.NoError(t, err)

	_, err = fix.attachments.Upload(ctx, created.ID, strings.NewReader("receipt body"), "receipt.txt", "text/plain")
	require.NoError(t, err)

	storedPath := filepath.Join(fix.uploadDir, strconv.FormatInt(created.ID, 10), "receipt.txt")
	_, statErr := os.Stat(storedPath)
	require.NoError(t, statErr, "uploaded file should exist on disk")

	require.NoError(t, fix.expenses.Delete(ctx, created.ID))

	_, statErr = os.Stat(storedPath)
	assert.True(t, os.IsNotExist(statErr), "file should be removed with the expense")

	_, statErr = os.Stat(filepath.Dir(storedPath))
	assert.True(t, os.IsNotExist(statErr), "empty per-expense directory should be removed")

	_, err = fix.expenses.Get(ctx, created.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteMissingExpense(t *testing.T) {
	fix := newServiceFixture(t, nil)
	err := fix.expenses.Delete(context.Background(), 9999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListPaginationDefaults(t *testing.T) {
	fix := newServiceFixture(t, nil)
	ctx := context.Background()

	for _, desc := range []string{"First", "Second", "Third"} {
		_, err := fix.expenses.Create(ctx, &dto.ExpenseCreateRequest{Description: desc, Amount: 1})
		require.NoError(t, err)
	}

	all, err := fix.expenses.List(ctx, -5, 0)
	require.NoError(t, err)
	require.Len(t, all, 3, "negative skip and zero limit fall back to defaults")

	page, err := fix.expenses.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Second", page[0].Description)
}
