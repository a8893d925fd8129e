package main

import (
	"evshare/internal/bookings/handler"
	"evshare/internal/bookings/repository"
	"evshare/internal/bookings/service"
	"evshare/internal/bookings/validator"
	directoryrepo "evshare/internal/directory/repository"
	"evshare/pkg/app"
	"evshare/pkg/config"
	"evshare/pkg/kafka"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Bookings service")

	producer, err := kafka.NewProducer(&cfg.Kafka, cfg.Kafka.BookingEventsTopic, cfg.Kafka.DLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	defer producer.Close()

	bookingService := initServices(cfg, producer)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config, producer *kafka.Producer) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	lockRepo := repository.NewVehicleLockRepository(cfg)
	vehicleRepo := directoryrepo.NewMongoVehicleRepository(cfg)
	coOwnerRepo := directoryrepo.NewMongoCoOwnerRepository(cfg)

	bookingService := service.NewBookingService(
		bookingRepo,
		lockRepo,
		vehicleRepo,
		coOwnerRepo,
		bookingValidator,
		producer,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}
