package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"persona-agent/internal/app"
	"persona-agent/internal/config"
	"persona-agent/internal/database"
	"persona-agent/internal/messaging"
	"persona-agent/internal/repository"
	"persona-agent/internal/worker"
	"persona-agent/shared/logger"
)

func main() {
	cfg := config.MustLoad()

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()
	appLogger.Info("Starting persona worker...", zap.String("env", cfg.AppEnv))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Fatal("Worker stopped with error", zap.Error(err))
	}
	appLogger.Info("Persona worker shut down gracefully")
}

func run(ctx context.Context, cfg *config.Config, appLogger *zap.Logger) error {
	generator, err := app.NewAgent(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	images := app.NewImageService(cfg, appLogger)

	pool, err := database.Connect(ctx, cfg.Database.DSN, cfg.Database.MaxConns, appLogger)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := database.NewMigrator(pool).Up(ctx); err != nil {
		return err
	}

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, appLogger)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	conn, err := messaging.Dial(ctx, cfg.RabbitMQ.URL, appLogger)
	if err != nil {
		return err
	}
	defer conn.Close()

	publisher, err := messaging.NewPublisher(conn, cfg.RabbitMQ.ResultQueueName, appLogger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	pusher := worker.NewMetricsPusher(cfg.PushGatewayURL, appLogger)
	defer pusher.Delete()

	handler, err := worker.NewTaskHandler(worker.Deps{
		Generator: generator,
		Images:    images,
		Results:   repository.NewPostgresResultRepository(pool, appLogger),
		Publisher: publisher,
		Seen:      repository.NewRedisSeenStore(redisClient, cfg.Redis.SeenTTL, appLogger),
		Pusher:    pusher,
	}, worker.Settings{
		TaskTimeout:   cfg.TaskTimeout,
		ImageSavePath: cfg.ImageJob.SavePath,
	}, appLogger)
	if err != nil {
		return err
	}

	consumer := messaging.NewConsumer(conn, cfg.RabbitMQ, handler, appLogger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.Run(gctx)
	})
	g.Go(func() error {
		select {
		case amqpErr := <-conn.NotifyClose(make(chan *amqp091.Error, 1)):
			if amqpErr != nil {
				return amqpErr
			}
			return errors.New("rabbitmq connection closed")
		case <-gctx.Done():
			return nil
		}
	})
	appLogger.Info("Persona worker started", zap.String("queue", cfg.RabbitMQ.TaskQueue.Name))
	return g.Wait()
}
