package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"expenseflow/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExtractSuggestionJSON_Direct(t *testing.T) {
	payload, err := extractSuggestionJSON(`{"category":"Travel","client_notes":"Client site visit."}`)
	require.NoError(t, err)
	require.NotNil(t, payload.Category)
	require.NotNil(t, payload.ClientNotes)
	assert.Equal(t, "Travel", *payload.Category)
	assert.Equal(t, "Client site visit.", *payload.ClientNotes)
}

func TestExtractSuggestionJSON_FencedTagged(t *testing.T) {
	raw := "Here is the suggestion:\n```json\n{\"category\":\"Travel\",\"client_notes\":\"Client site visit.\"}\n```\nLet me know if you need anything else."
	payload, err := extractSuggestionJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, "Travel", *payload.Category)
	assert.Equal(t, "Client site visit.", *payload.ClientNotes)
}

func TestExtractSuggestionJSON_FencedUntagged(t *testing.T) {
	raw := "```\n{\"category\":\"Utilities\",\"client_notes\":\"Monthly electricity bill.\"}\n```"
	payload, err := extractSuggestionJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, "Utilities", *payload.Category)
}

func TestExtractSuggestionJSON_FencedNoNewline(t *testing.T) {
	raw := "```json{\"category\":\"Equipment\",\"client_notes\":\"New monitor.\"}```"
	payload, err := extractSuggestionJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, "Equipment", *payload.Category)
}

func TestExtractSuggestionJSON_Prose(t *testing.T) {
	payload, err := extractSuggestionJSON("I'm sorry, I cannot categorize this expense.")
	assert.ErrorIs(t, err, ErrUnparseable)
	assert.Nil(t, payload)
}

func TestExtractSuggestionJSON_UnclosedFence(t *testing.T) {
	_, err := extractSuggestionJSON("```json\n{\"category\":\"Travel\"}")
	assert.ErrorIs(t, err, ErrUnparseable)
}

func TestExtractSuggestionJSON_FirstWellFormedBlockWins(t *testing.T) {
	raw := "```json\nnot json at all\n```\nSecond attempt:\n```json\n{\"category\":\"Insurance\",\"client_notes\":\"Annual liability premium.\"}\n```"
	payload, err := extractSuggestionJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, "Insurance", *payload.Category)
}

func TestExtractSuggestionJSON_EmptyObject(t *testing.T) {
	payload, err := extractSuggestionJSON("{}")
	require.NoError(t, err)
	assert.Nil(t, payload.Category)
	assert.Nil(t, payload.ClientNotes)
}

func newTestLLM(apiKey, baseURL string) *LLMService {
	return NewLLMService(&config.OpenAIConfig{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   "gpt-4",
		Timeout: 5 * time.Second,
	}, zap.NewNop())
}

func completionResponse(content string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestSuggest_NotConfiguredSkipsNetwork(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	svc := newTestLLM("", srv.URL)
	result := svc.Suggest(context.Background(), "Coffee meeting", 15.50)

	assert.Equal(t, ErrNotConfigured.Error(), result.Error)
	assert.Nil(t, result.Category)
	assert.Nil(t, result.ClientNotes)
	assert.Zero(t, atomic.LoadInt32(&calls), "no network call expected without a credential")
}

func TestSuggest_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4", req.Model)
		assert.InDelta(t, 0.3, req.Temperature, 0.0001)
		assert.Equal(t, 200, req.MaxTokens)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Contains(t, req.Messages[1].Content, "Coffee meeting")
		assert.Contains(t, req.Messages[1].Content, "Travel")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionResponse("```json\n{\"category\":\"Meals & Entertainment\",\"client_notes\":\"Business coffee meeting.\"}\n```")))
	}))
	defer srv.Close()

	svc := newTestLLM("test-key", srv.URL)
	result := svc.Suggest(context.Background(), "Coffee meeting", 15.50)

	assert.Empty(t, result.Error)
	require.NotNil(t, result.Category)
	require.NotNil(t, result.ClientNotes)
	assert.Equal(t, "Meals & Entertainment", *result.Category)
	assert.Equal(t, "Business coffee meeting.", *result.ClientNotes)
}

func TestSuggest_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := newTestLLM("test-key", srv.URL)
	result := svc.Suggest(context.Background(), "Coffee meeting", 15.50)

	assert.NotEmpty(t, result.Error)
	assert.Nil(t, result.Category)
	assert.Nil(t, result.ClientNotes)
}

func TestSuggest_UnparseableOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionResponse("Sure! I'd suggest filing this under travel costs.")))
	}))
	defer srv.Close()

	svc := newTestLLM("test-key", srv.URL)
	result := svc.Suggest(context.Background(), "Taxi", 23.40)

	assert.Equal(t, ErrUnparseable.Error(), result.Error)
	assert.Nil(t, result.Category)
	assert.Nil(t, result.ClientNotes)
}
