package handlers

import (
	"errors"

	"expenseflow/internal/dto"
	"expenseflow/internal/repository"
	"expenseflow/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type SuggestionHandler struct {
	suggestionService *service.SuggestionService
	logger            *zap.Logger
}

func NewSuggestionHandler(suggestionService *service.SuggestionService, logger *zap.Logger) *SuggestionHandler {
	return &SuggestionHandler{
		suggestionService: suggestionService,
		logger:            logger,
	}
}

// Categories godoc
// @Summary List available expense categories
// @Tags suggestions
// @Produce json
// @Success 200 {object} dto.CategoriesResponse
// @Router /api/categories [get]
func (h *SuggestionHandler) Categories(c *fiber.Ctx) error {
	return c.JSON(dto.CategoriesResponse{
		Categories: h.suggestionService.Categories(),
	})
}

// Suggest godoc
// @Summary Get an AI category and note suggestion
// @Description Stateless: nothing is persisted. AI failures come back in the error field.
// @Tags suggestions
// @Accept json
// @Produce json
// @Param request body dto.SuggestRequest true "Expense description and amount"
// @Success 200 {object} dto.SuggestionResult
// @Failure 400 {object} map[string]string
// @Router /api/expenses/ai-suggest [post]
func (h *SuggestionHandler) Suggest(c *fiber.Ctx) error {
	var req dto.SuggestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(h.suggestionService.Suggest(c.Context(), &req))
}

// Approve godoc
// @Summary Approve or override an AI suggestion
// @Description Applies the resolution to the owning expense and records the final values on the suggestion
// @Tags suggestions
// @Accept json
// @Produce json
// @Param id path int true "Expense ID"
// @Param suggestionID path int true "Suggestion ID"
// @Param request body dto.ApprovalRequest true "Approval choices"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 404 {object} map[string]string
// @Router /api/expenses/{id}/ai-suggestions/{suggestionID}/approve [post]
func (h *SuggestionHandler) Approve(c *fiber.Ctx) error {
	expenseID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid expense ID",
		})
	}
	suggestionID, err := parseID(c, "suggestionID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid suggestion ID",
		})
	}

	var req dto.ApprovalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	resp, err := h.suggestionService.Approve(c.Context(), expenseID, suggestionID, &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "AI suggestion not found",
			})
		}
		h.logger.Error("Failed to approve suggestion", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to approve suggestion",
		})
	}

	return c.JSON(resp)
}
