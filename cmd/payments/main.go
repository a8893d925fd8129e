package main

import (
	directoryrepo "evshare/internal/directory/repository"
	groupsrepo "evshare/internal/groups/repository"
	"evshare/internal/payments/handler"
	"evshare/internal/payments/repository"
	"evshare/internal/payments/service"
	"evshare/internal/payments/validator"
	"evshare/pkg/app"
	"evshare/pkg/config"
	"evshare/pkg/kafka"
)

const (
	ServiceName = "payments"
	WebhookPath = "/api/v1/payments/webhook"
)

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Payments service")

	producer, err := kafka.NewProducer(&cfg.Kafka, cfg.Kafka.PaymentEventsTopic, cfg.Kafka.DLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	defer producer.Close()

	paymentService := initServices(cfg, producer)
	serverApp := app.NewApplication(cfg)
	serverApp.GuardWebhook(WebhookPath)
	serverApp.SetApp(handler.NewPaymentHandler(paymentService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config, producer *kafka.Producer) service.PaymentService {
	paymentValidator := validator.NewPaymentValidator(cfg.Log)
	shareRepo := repository.NewMongoCostShareRepository(cfg)
	transactionRepo := repository.NewMongoTransactionRepository(cfg)
	groupRepo := groupsrepo.NewMongoGroupRepository(cfg)
	coOwnerRepo := directoryrepo.NewMongoCoOwnerRepository(cfg)

	paymentService := service.NewPaymentService(
		shareRepo,
		transactionRepo,
		groupRepo,
		coOwnerRepo,
		paymentValidator,
		producer,
		cfg,
	)

	cfg.Log.Info("Payment service initialized", "database", cfg.MongoDatabaseName)
	return paymentService
}
