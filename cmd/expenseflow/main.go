package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"expenseflow/internal/api"
	"expenseflow/internal/api/handlers"
	"expenseflow/internal/repository"
	"expenseflow/internal/service"
	"expenseflow/pkg/config"
	"expenseflow/pkg/database"
	"expenseflow/pkg/logger"

	"go.uber.org/zap"
)

// @title Expense Management API
// @version 1.0
// @description Expense tracking with file attachments and AI category suggestions

// @host localhost:8000
// @BasePath /api

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting expenseflow service")

	ctx := context.Background()
	db, err := database.Open(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	expenseRepo := repository.NewExpenseRepository(db, appLogger)
	attachmentRepo := repository.NewAttachmentRepository(db, appLogger)
	suggestionRepo := repository.NewSuggestionRepository(db, appLogger)

	// Services
	llmService := service.NewLLMService(&cfg.OpenAI, appLogger)
	expenseService := service.NewExpenseService(expenseRepo, attachmentRepo, suggestionRepo, llmService, appLogger)
	attachmentService := service.NewAttachmentService(expenseRepo, attachmentRepo, cfg.Uploads.Dir, appLogger)
	suggestionService := service.NewSuggestionService(expenseRepo, attachmentRepo, suggestionRepo, llmService, appLogger)

	// Handlers
	expenseHandler := handlers.NewExpenseHandler(expenseService, appLogger)
	attachmentHandler := handlers.NewAttachmentHandler(attachmentService, appLogger)
	suggestionHandler := handlers.NewSuggestionHandler(suggestionService, appLogger)

	app := api.SetupRouter(&cfg.Server, expenseHandler, attachmentHandler, suggestionHandler)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
