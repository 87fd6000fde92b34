package api

import (
	"expenseflow/internal/api/handlers"
	"expenseflow/pkg/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func SetupRouter(
	cfg *config.ServerConfig,
	expenseHandler *handlers.ExpenseHandler,
	attachmentHandler *handlers.AttachmentHandler,
	suggestionHandler *handlers.SuggestionHandler,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000,http://localhost:5173",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: true,
	}))
	app.Use(logger.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Expense Management API",
			"version": "1.0.0",
		})
	})

	api := app.Group("/api")
	api.Get("/categories", suggestionHandler.Categories)

	expenses := api.Group("/expenses")
	expenses.Post("/ai-suggest", suggestionHandler.Suggest)
	expenses.Post("", expenseHandler.Create)
	expenses.Get("", expenseHandler.List)
	expenses.Get("/:id", expenseHandler.Get)
	expenses.Put("/:id", expenseHandler.Update)
	expenses.Delete("/:id", expenseHandler.Delete)

	expenses.Post("/:id/attachments", attachmentHandler.Upload)
	expenses.Get("/:id/attachments/:attachmentID", attachmentHandler.Download)
	expenses.Delete("/:id/attachments/:attachmentID", attachmentHandler.Delete)

	expenses.Post("/:id/ai-suggestions/:suggestionID/approve", suggestionHandler.Approve)

	return app
}
