package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gagyebu/internal/config"
	"gagyebu/internal/fx"
	apphttp "gagyebu/internal/http"
	"gagyebu/internal/log"
	"gagyebu/internal/services"
	"gagyebu/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := log.New(log.Config{
		Level:     logLevel(cfg.LogLevel),
		Component: log.ComponentApp,
		Handler: slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel(cfg.LogLevel),
		}),
	})
	log.SetDefault(logger)

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	resolver := fx.NewResolver(cfg.RateBaseURL, cfg.RateTimeout, logger)

	transactions := services.NewTransactionService(repo, resolver, logger)
	overview := services.NewOverviewService(repo, repo, logger)
	budgets := services.NewBudgetService(repo, repo, repo, logger)
	reports := services.NewReportService(repo, repo, repo, logger)
	catalog := services.NewCatalogService(repo, repo, logger)

	handler := apphttp.NewHandler(transactions, overview, budgets, reports, catalog, resolver)
	srv := apphttp.NewServer(":"+cfg.Port, handler, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	if err := srv.Start(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
