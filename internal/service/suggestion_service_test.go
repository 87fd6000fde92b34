package service

import (
	"context"
	"testing"

	"expenseflow/internal/dto"
	"expenseflow/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

// Seeds an expense carrying one pending AI suggestion and returns both ids.
func seedPendingSuggestion(t *testing.T, fix *serviceFixture) (expenseID, suggestionID int64) {
	t.Helper()

	resp, err := fix.expenses.Create(context.Background(), &dto.ExpenseCreateRequest{
		Description:         "Flight to client",
		Amount:              420.00,
		RequestAISuggestion: true,
	})
	require.NoError(t, err)
	require.Len(t, resp.AISuggestions, 1)
	return resp.ID, resp.AISuggestions[0].ID
}

func TestCategoriesAreACopy(t *testing.T) {
	fix := newServiceFixture(t, nil)

	categories := fix.suggestions.Categories()
	require.Len(t, categories, 12)
	assert.Equal(t, "Travel", categories[0])
	assert.Equal(t, "Miscellaneous", categories[11])

	categories[0] = "mutated"
	assert.Equal(t, "Travel", fix.suggestions.Categories()[0])
}

func TestApproveAcceptsBothByDefault(t *testing.T) {
	fix := newServiceFixture(t, &dto.SuggestionResult{
		Category:    strPtr("Travel"),
		ClientNotes: strPtr("Client site visit."),
	})
	expenseID, suggestionID := seedPendingSuggestion(t, fix)

	resp, err := fix.suggestions.Approve(context.Background(), expenseID, suggestionID, &dto.ApprovalRequest{})
	require.NoError(t, err)

	require.NotNil(t, resp.Category)
	assert.Equal(t, "Travel", *resp.Category)
	require.NotNil(t, resp.ClientNotes)
	assert.Equal(t, "Client site visit.", *resp.ClientNotes)

	require.Len(t, resp.AISuggestions, 1)
	got := resp.AISuggestions[0]
	assert.True(t, got.WasAccepted)
	assert.False(t, got.UserModified)
	require.NotNil(t, got.FinalCategory)
	assert.Equal(t, "Travel", *got.FinalCategory)
	require.NotNil(t, got.FinalNotes)
	assert.Equal(t, "Client site visit.", *got.FinalNotes)
}

func TestApproveWithCustomNotes(t *testing.T) {
	fix := newServiceFixture(t, &dto.SuggestionResult{
		Category:    strPtr("Travel"),
		ClientNotes: strPtr("Client site visit."),
	})
	expenseID, suggestionID := seedPendingSuggestion(t, fix)

	resp, err := fix.suggestions.Approve(context.Background(), expenseID, suggestionID, &dto.ApprovalRequest{
		AcceptCategory: boolPtr(true),
		AcceptNotes:    boolPtr(false),
		CustomNotes:    strPtr("Custom text"),
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Category)
	assert.Equal(t, "Travel", *resp.Category)
	require.NotNil(t, resp.ClientNotes)
	assert.Equal(t, "Custom text", *resp.ClientNotes)

	got := resp.AISuggestions[0]
	assert.True(t, got.WasAccepted)
	assert.True(t, got.UserModified)
	require.NotNil(t, got.FinalNotes)
	assert.Equal(t, "Custom text", *got.FinalNotes)
}

func TestApproveAcceptWinsOverCustom(t *testing.T) {
	fix := newServiceFixture(t, &dto.SuggestionResult{
		Category:    strPtr("Travel"),
		ClientNotes: strPtr("Client site visit."),
	})
	expenseID, suggestionID := seedPendingSuggestion(t, fix)

	// Contradictory request: accepted and overridden at once. Accept wins.
	resp, err := fix.suggestions.Approve(context.Background(), expenseID, suggestionID, &dto.ApprovalRequest{
		AcceptCategory: boolPtr(true),
		CustomCategory: strPtr("Miscellaneous"),
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Category)
	assert.Equal(t, "Travel", *resp.Category)

	got := resp.AISuggestions[0]
	assert.True(t, got.WasAccepted)
	assert.False(t, got.UserModified, "an accepted field is not a user modification")
	require.NotNil(t, got.FinalCategory)
	assert.Equal(t, "Travel", *got.FinalCategory)
}

func TestApproveWithBothCustom(t *testing.T) {
	fix := newServiceFixture(t, &dto.SuggestionResult{
		Category:    strPtr("Travel"),
		ClientNotes: strPtr("Client site visit."),
	})
	expenseID, suggestionID := seedPendingSuggestion(t, fix)

	resp, err := fix.suggestions.Approve(context.Background(), expenseID, suggestionID, &dto.ApprovalRequest{
		AcceptCategory: boolPtr(false),
		AcceptNotes:    boolPtr(false),
		CustomCategory: strPtr("Miscellaneous"),
		CustomNotes:    strPtr("Custom text"),
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Category)
	assert.Equal(t, "Miscellaneous", *resp.Category)
	require.NotNil(t, resp.ClientNotes)
	assert.Equal(t, "Custom text", *resp.ClientNotes)
	assert.True(t, resp.AISuggestions[0].UserModified)
}

func TestApproveRejectedWithoutCustomLeavesField(t *testing.T) {
	fix := newServiceFixture(t, &dto.SuggestionResult{
		Category:    strPtr("Travel"),
		ClientNotes: strPtr("Client site visit."),
	})
	expenseID, suggestionID := seedPendingSuggestion(t, fix)

	resp, err := fix.suggestions.Approve(context.Background(), expenseID, suggestionID, &dto.ApprovalRequest{
		AcceptCategory: boolPtr(false),
		AcceptNotes:    boolPtr(true),
	})
	require.NoError(t, err)

	assert.Nil(t, resp.Category, "rejected without an override stays untouched")
	require.NotNil(t, resp.ClientNotes)
	assert.Equal(t, "Client site visit.", *resp.ClientNotes)

	got := resp.AISuggestions[0]
	assert.True(t, got.WasAccepted)
	assert.False(t, got.UserModified)
	assert.Nil(t, got.FinalCategory)
}

func TestApproveIsRepeatable(t *testing.T) {
	fix := newServiceFixture(t, &dto.SuggestionResult{
		Category:    strPtr("Travel"),
		ClientNotes: strPtr("Client site visit."),
	})
	expenseID, suggestionID := seedPendingSuggestion(t, fix)
	ctx := context.Background()

	first, err := fix.suggestions.Approve(ctx, expenseID, suggestionID, &dto.ApprovalRequest{})
	require.NoError(t, err)
	second, err := fix.suggestions.Approve(ctx, expenseID, suggestionID, &dto.ApprovalRequest{})
	require.NoError(t, err)

	assert.Equal(t, first.Category, second.Category)
	assert.Equal(t, first.ClientNotes, second.ClientNotes)
	assert.Equal(t, first.AISuggestions[0].FinalCategory, second.AISuggestions[0].FinalCategory)
}

func TestApproveWrongExpense(t *testing.T) {
	fix := newServiceFixture(t, &dto.SuggestionResult{
		Category: strPtr("Travel"),
	})
	_, suggestionID := seedPendingSuggestion(t, fix)

	other, err := fix.expenses.Create(context.Background(), &dto.ExpenseCreateRequest{
		Description: "Unrelated",
		Amount:      1,
	})
	require.NoError(t, err)

	_, err = fix.suggestions.Approve(context.Background(), other.ID, suggestionID, &dto.ApprovalRequest{})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestApproveMissingSuggestionID(t *testing.T) {
	fix := newServiceFixture(t, nil)
	expense, err := fix.expenses.Create(context.Background(), &dto.ExpenseCreateRequest{
		Description: "Taxi",
		Amount:      5,
	})
	require.NoError(t, err)

	_, err = fix.suggestions.Approve(context.Background(), expense.ID, 9999, &dto.ApprovalRequest{})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
