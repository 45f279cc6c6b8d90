package main

import (
	"slotbook/internal/booking/handler"
	"slotbook/internal/booking/repository"
	"slotbook/internal/booking/service"
	"slotbook/internal/booking/validator"
	"slotbook/pkg/app"
	"slotbook/pkg/config"
	"slotbook/pkg/kafka"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}

	cfg.LogConfiguration()

	cfg.Log.Info("Starting bookings service")
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	bookingService, requestService := initServices(cfg)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg,
		handler.NewPublicHandler(bookingService, cfg.Log),
		handler.NewAdminHandler(requestService, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config) (service.BookingService, service.RequestService) {
	bookingValidator := validator.NewBookingValidator(cfg.Log)

	requestRepo := repository.NewMongoRequestRepository(cfg)
	slotRepo := repository.NewMongoSlotRepository(cfg)
	inviteRepo := repository.NewMongoInviteRepository(cfg)
	lockRepo := repository.NewMongoClaimLockRepository(cfg)

	var publisher service.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaClaimTopic)
		if err != nil {
			cfg.Log.Fatal("Failed to initialize Kafka producer", "error", err)
		}
		publisher = producer
		cfg.Log.Info("Kafka producer initialized", "topic", cfg.KafkaClaimTopic)
	} else {
		cfg.Log.Warn("Kafka brokers not configured, claim events disabled")
	}

	bookingService := service.NewBookingService(
		requestRepo,
		slotRepo,
		inviteRepo,
		lockRepo,
		bookingValidator,
		publisher,
		cfg,
	)
	requestService := service.NewRequestService(
		requestRepo,
		slotRepo,
		inviteRepo,
		bookingValidator,
		cfg,
	)

	cfg.Log.Info("Booking services initialized", "database", cfg.MongoDatabaseName)
	return bookingService, requestService
}
