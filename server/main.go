package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/bg-remover/internal/config"
	"github.com/phambaophuc/bg-remover/internal/http/handlers"
	"github.com/phambaophuc/bg-remover/internal/http/routes"
	"github.com/phambaophuc/bg-remover/internal/services/processor"
	"github.com/phambaophuc/bg-remover/internal/services/queue"
	"github.com/phambaophuc/bg-remover/internal/services/session"
	"github.com/phambaophuc/bg-remover/internal/services/storage"
	"github.com/phambaophuc/bg-remover/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	zlog, err := logger.New(cfg.Server.Mode)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	gin.SetMode(cfg.Server.Mode)

	// Wait for interrupt signal to gracefully shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, zlog)
	stop()

	if err != nil {
		zlog.Error("Server stopped with error", zap.Error(err))
		logger.Sync(zlog)
		os.Exit(1)
	}
	logger.Sync(zlog)
}

// run wires the services and serves until ctx is cancelled. Every resource
// opened here is released before it returns.
func run(ctx context.Context, cfg *config.Config, zlog *zap.Logger) error {
	// Initialize services
	sessions := session.NewProvider(cfg.Model.Name, newFactory(cfg, zlog), zlog)
	if cfg.Model.Preload {
		if err := sessions.Preload(); err != nil {
			return fmt.Errorf("preload model: %w", err)
		}
	}

	store, err := storage.NewStorageService(cfg, zlog)
	if err != nil {
		return fmt.Errorf("initialize storage service: %w", err)
	}
	defer store.Close()

	if cfg.Storage.Retention > 0 {
		cleanup, err := store.StartCleanup(cfg.Storage.CleanupSchedule, cfg.Storage.Retention)
		if err != nil {
			return fmt.Errorf("schedule output cleanup: %w", err)
		}
		defer cleanup.Stop()
	}

	var events processor.EventPublisher
	var queueService *queue.QueueService
	if cfg.RabbitMQ.URL != "" {
		queueService, err = queue.NewQueueService(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, zlog)
		if err != nil {
			// Continue without event publishing
			zlog.Warn("Failed to initialize queue service", zap.Error(err))
			queueService = nil
		} else {
			events = queueService
			defer queueService.Close()
		}
	}

	imageProcessor := processor.NewImageProcessor(sessions, store, events, zlog)

	// Initialize handlers
	imageHandler := handlers.NewImageHandler(imageProcessor, store, zlog, cfg)
	serviceHandler := handlers.NewServiceHandler(sessions, store, queueService, cfg)

	router := routes.NewRouter(imageHandler, serviceHandler, zlog)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Handler:      router.SetupRoutes(),
	}

	// Start server
	serveErr := make(chan error, 1)
	go func() {
		zlog.Info("Starting server",
			zap.String("addr", server.Addr),
			zap.String("model", cfg.Model.Name),
			zap.String("backend", cfg.Model.Backend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
	case <-ctx.Done():
	}

	zlog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Server forced to shutdown", zap.Error(err))
	}

	zlog.Info("Server exited")
	return nil
}

func newFactory(cfg *config.Config, zlog *zap.Logger) session.Factory {
	if cfg.Model.Backend == config.BackendONNX {
		return session.NewOnnxFactory(cfg.Model.ModelDir, cfg.Model.LibraryPath, zlog)
	}
	return session.NewRembgFactory(cfg.Model.EngineURL, cfg.Model.Timeout, nil, zlog)
}
