package handlers

import (
	"errors"
	"fmt"

	"expenseflow/internal/repository"
	"expenseflow/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AttachmentHandler struct {
	attachmentService *service.AttachmentService
	logger            *zap.Logger
}

func NewAttachmentHandler(attachmentService *service.AttachmentService, logger *zap.Logger) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentService: attachmentService,
		logger:            logger,
	}
}

// Upload godoc
// @Summary Upload an attachment for an expense
// @Tags attachments
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Expense ID"
// @Param file formData file true "Attachment file"
// @Success 201 {object} dto.AttachmentResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/expenses/{id}/attachments [post]
func (h *AttachmentHandler) Upload(c *fiber.Ctx) error {
	expenseID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid expense ID",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File is required",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to open file",
		})
	}
	defer src.Close()

	resp, err := h.attachmentService.Upload(c.Context(), expenseID, src, file.Filename, file.Header.Get(fiber.HeaderContentType))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Expense not found",
			})
		}
		h.logger.Error("Failed to upload attachment", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to upload attachment",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Download godoc
// @Summary Download an attachment
// @Description Returns the raw file bytes with the original content type
// @Tags attachments
// @Param id path int true "Expense ID"
// @Param attachmentID path int true "Attachment ID"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string
// @Router /api/expenses/{id}/attachments/{attachmentID} [get]
func (h *AttachmentHandler) Download(c *fiber.Ctx) error {
	expenseID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid expense ID",
		})
	}
	attachmentID, err := parseID(c, "attachmentID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid attachment ID",
		})
	}

	attachment, err := h.attachmentService.Get(c.Context(), expenseID, attachmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Attachment not found",
			})
		}
		h.logger.Error("Failed to get attachment", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get attachment",
		})
	}

	if err := c.SendFile(attachment.FilePath); err != nil {
		h.logger.Error("Failed to send attachment file", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read attachment file",
		})
	}

	// Preserve the content type and name recorded at upload time over
	// whatever SendFile sniffed from the extension.
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", attachment.Filename))
	if attachment.ContentType != nil {
		c.Set(fiber.HeaderContentType, *attachment.ContentType)
	}
	return nil
}

// Delete godoc
// @Summary Delete an attachment
// @Description Removes the backing file, then the record; a missing file is a no-op
// @Tags attachments
// @Param id path int true "Expense ID"
// @Param attachmentID path int true "Attachment ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/expenses/{id}/attachments/{attachmentID} [delete]
func (h *AttachmentHandler) Delete(c *fiber.Ctx) error {
	expenseID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid expense ID",
		})
	}
	attachmentID, err := parseID(c, "attachmentID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid attachment ID",
		})
	}

	if err := h.attachmentService.Delete(c.Context(), expenseID, attachmentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Attachment not found",
			})
		}
		h.logger.Error("Failed to delete attachment", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete attachment",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
