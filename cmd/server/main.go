package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/myproject/website/internal/app"
	"github.com/myproject/website/internal/config"
	"github.com/myproject/website/internal/middleware"
	"github.com/myproject/website/pkg/utils"
	"github.com/sirupsen/logrus"
)

const (
	healthCheckInterval = time.Minute
	shutdownTimeout     = 15 * time.Second
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := utils.InitLogger(cfg.Log.Level)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	application, err := app.Open(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to start application")
	}
	defer application.Close()

	if err := application.Migrate(); err != nil {
		logger.WithError(err).Fatal("Database migration failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Search.ReindexOnStart {
		if _, err := application.Reindex(ctx); err != nil {
			logger.WithError(err).Fatal("Failed to build search index")
		}
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute)
	defer limiter.Stop()

	server, err := application.Server(limiter)
	if err != nil {
		logger.WithError(err).Fatal("Failed to build router")
	}

	go server.Checker.PeriodicHealthCheck(ctx, healthCheckInterval)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           server.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"addr":    srv.Addr,
			"backend": application.Engine.Name,
		}).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("HTTP server error")
		}
	}()

	<-ctx.Done()
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Error during shutdown")
	}
	server.Search.Wait()

	logger.Info("Server stopped gracefully")
}
