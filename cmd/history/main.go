package main

import (
	"context"
	"errors"

	"evshare/internal/history/consumer"
	"evshare/internal/history/handler"
	"evshare/internal/history/repository"
	"evshare/internal/history/service"
	"evshare/internal/history/validator"
	"evshare/pkg/app"
	"evshare/pkg/config"
	"evshare/pkg/kafka"
)

const (
	ServiceName     = "history"
	ConsumerGroupID = "history-service"
)

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting History service")

	historyService := initServices(cfg)

	bookingConsumer, err := kafka.NewConsumer(
		&cfg.Kafka,
		cfg.Kafka.BookingEventsTopic,
		ConsumerGroupID,
		cfg.Kafka.DLQTopic,
		consumer.NewBookingEventHandler(historyService, cfg.Log),
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := bookingConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			cfg.Log.Error("Booking event consumer stopped", "error", err)
		}
	}()

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewHistoryHandler(historyService, cfg.Log))
	serverApp.Run()

	cancel()
	if err := bookingConsumer.Close(); err != nil {
		cfg.Log.Error("Failed to close Kafka consumer", "error", err)
	}
}

func initServices(cfg *config.Config) service.HistoryService {
	historyValidator := validator.NewHistoryValidator(cfg.Log)
	usageRepo := repository.NewMongoUsageRecordRepository(cfg)
	costRepo := repository.NewMongoCostRecordRepository(cfg)

	historyService := service.NewHistoryService(usageRepo, costRepo, historyValidator, cfg)

	cfg.Log.Info("History service initialized", "database", cfg.MongoDatabaseName)
	return historyService
}
