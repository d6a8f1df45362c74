package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"labeling-service/internal/config"
	"labeling-service/internal/handler"
	"labeling-service/internal/llm"
	"labeling-service/internal/metrics"
	"labeling-service/internal/repository"
	"labeling-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Starting Labeling Service...")

	configPath := "configs/config.yml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Suggestions are optional; the service runs without any provider.
	var suggester service.Suggester
	if providers := cfg.SuggestionProviders(); len(providers) > 0 {
		multiClient, err := llm.NewMultiProviderClient(llm.MultiProviderConfig{
			Providers:   providers,
			MaxFailures: cfg.MaxFailuresBeforeSwitch,
		}, logger)
		if err != nil {
			logger.Warn("Failed to initialize suggestion providers, suggestions disabled", zap.Error(err))
		} else {
			suggester = multiClient
			defer multiClient.Close()
			logger.Info("Suggestion providers initialized", zap.Int("provider_count", len(providers)))
		}
	} else {
		logger.Info("No suggestion provider configured, suggestions disabled")
	}

	// Initialize repository
	repo, err := repository.NewLabelRepository(cfg.Database.Path, logger)
	if err != nil {
		logger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	// Initialize service
	labeling := service.NewLabelingService(repo, suggester, logger)

	// Initialize HTTP handler
	apiHandler := handler.NewHandler(labeling, logger)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()
	router.Use(handler.CORSMiddleware())
	router.Use(metrics.New().Middleware())

	// Register routes
	apiHandler.RegisterRoutes(router)

	// Start server
	serverAddr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("Server starting", zap.String("address", serverAddr))

	// Graceful shutdown
	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Labeling Service is running",
		zap.String("port", cfg.Server.Port),
		zap.String("database", cfg.Database.Path))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
