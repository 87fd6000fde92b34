package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"expenseflow/internal/dto"
	"expenseflow/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExpenseCategories is the closed set of labels offered to the model and
// served by GET /api/categories.
var ExpenseCategories = []string{
	"Travel",
	"Meals & Entertainment",
	"Office Supplies",
	"Software & Subscriptions",
	"Professional Services",
	"Marketing & Advertising",
	"Utilities",
	"Equipment",
	"Training & Education",
	"Insurance",
	"Rent & Facilities",
	"Miscellaneous",
}

var (
	ErrNotConfigured = errors.New("OpenAI API key not configured")
	ErrUnparseable   = errors.New("could not parse AI response")
)

// Suggester produces a category and client-facing note for an expense.
// Failures of the external dependency are folded into the result's Error
// field; implementations never return transport errors to the caller.
type Suggester interface {
	Suggest(ctx context.Context, description string, amount float64) *dto.SuggestionResult
	Model() string
}

// LLMService talks to an OpenAI-compatible chat completions endpoint. One
// instance is created in main and injected into the services that need it.
type LLMService struct {
	cfg        *config.OpenAIConfig
	httpClient *http.Client
	logger     *zap.Logger
}

func NewLLMService(cfg *config.OpenAIConfig, logger *zap.Logger) *LLMService {
	if cfg.APIKey == "" {
		logger.Warn("OPENAI_API_KEY is not set, AI suggestions will be unavailable")
	}

	return &LLMService{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

func (s *LLMService) Model() string {
	return s.cfg.Model
}

const systemPrompt = "You are a professional expense management assistant. Always respond with valid JSON."

func buildSuggestionPrompt(description string, amount float64) string {
	return fmt.Sprintf(`You are an AI assistant helping with expense management. Given an expense description and amount,
suggest an appropriate category and generate a professional, client-facing note.

Expense Description: %s
Amount: $%.2f

Available Categories: %s

Respond with JSON in this exact format:
{
    "category": "Most appropriate category from the list",
    "client_notes": "A brief, professional note suitable for client reports (1-2 sentences)"
}

Guidelines for client notes:
- Be concise and professional
- Focus on business value or necessity
- Suitable for client invoices or reports
- Don't include the amount (it's already shown)
`, description, amount, strings.Join(ExpenseCategories, ", "))
}

// Suggest asks the model for a category and client note. Every failure mode
// (missing credential, transport fault, unparseable output) is reported
// through the result's Error field.
func (s *LLMService) Suggest(ctx context.Context, description string, amount float64) *dto.SuggestionResult {
	if s.cfg.APIKey == "" {
		return &dto.SuggestionResult{Error: ErrNotConfigured.Error()}
	}

	content, err := s.complete(ctx, buildSuggestionPrompt(description, amount))
	if err != nil {
		s.logger.Warn("Suggestion request failed", zap.Error(err))
		return &dto.SuggestionResult{Error: err.Error()}
	}

	payload, err := extractSuggestionJSON(content)
	if err != nil {
		s.logger.Warn("Unparseable model output", zap.String("content", content))
		return &dto.SuggestionResult{Error: ErrUnparseable.Error()}
	}

	return &dto.SuggestionResult{
		Category:    sanitizeUTF8Ptr(payload.Category),
		ClientNotes: sanitizeUTF8Ptr(payload.ClientNotes),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete performs one blocking chat completion call. Sampling leans
// deterministic and the answer length is bounded, since the expected output
// is a two-field JSON object.
func (s *LLMService) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: s.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.3,
		MaxTokens:   200,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("completion failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no response from model")
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

func sanitizeUTF8Ptr(s *string) *string {
	if s == nil {
		return nil
	}
	clean := sanitizeUTF8(*s)
	return &clean
}
