package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"persona-agent/internal/api"
	"persona-agent/internal/app"
	"persona-agent/internal/config"
	"persona-agent/internal/database"
	"persona-agent/internal/messaging"
	"persona-agent/internal/repository"
	"persona-agent/shared/authutils"
	"persona-agent/shared/logger"
)

func main() {
	cfg := config.MustLoad()

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()
	zap.ReplaceGlobals(appLogger)
	appLogger.Info("Starting persona API...", zap.String("env", cfg.AppEnv))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	verifier, err := authutils.NewJWTVerifier(cfg.HTTP.JWTSecret, appLogger)
	if err != nil {
		appLogger.Fatal("API_JWT_SECRET is required", zap.Error(err))
	}

	generator, err := app.NewAgent(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create persona agent", zap.Error(err))
	}

	deps := api.Deps{
		Generator: generator,
		Images:    app.NewImageService(cfg, appLogger),
	}

	// Result history and task enqueueing are enabled only when configured.
	if cfg.Database.DSN != "" {
		pool, err := database.Connect(ctx, cfg.Database.DSN, cfg.Database.MaxConns, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer pool.Close()
		deps.Results = repository.NewPostgresResultRepository(pool, appLogger)
	}
	if cfg.RabbitMQ.URL != "" {
		conn, err := messaging.Dial(ctx, cfg.RabbitMQ.URL, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer conn.Close()
		publisher, err := messaging.NewPublisher(conn, cfg.RabbitMQ.TaskQueue.Name, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to create task publisher", zap.Error(err))
		}
		defer publisher.Close()
		deps.Tasks = publisher
	}

	handler := api.NewHandler(deps, appLogger, api.WithProxyAllowedHosts(cfg.HTTP.ProxyAllowedHosts...))
	router := api.NewRouter(handler, verifier, cfg.HTTP, cfg.IsProduction(), appLogger)

	// Generation calls are bounded by the AI client timeout.
	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AI.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", cfg.HTTP.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server listen error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exiting")
}
