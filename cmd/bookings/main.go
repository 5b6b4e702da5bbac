package main

import (
	"salonbook/internal/bookings/handler"
	"salonbook/internal/bookings/repository"
	"salonbook/internal/bookings/service"
	"salonbook/internal/bookings/validator"
	"salonbook/pkg/app"
	"salonbook/pkg/config"
	"salonbook/pkg/events"
	"salonbook/pkg/kafka"
	kafka_config "salonbook/pkg/kafka/config"
	kafka_middleware "salonbook/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Bookings service")
	serverApp := app.NewApplication(cfg)
	bookingService := initServices(cfg, serverApp)
	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config, serverApp *app.Application) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log, cfg.MaxServiceDurationMin)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	lockRepo := repository.NewSlotLockRepository(cfg)
	checker := service.NewAvailabilityClient(cfg.AvailabilityURL, cfg.ReadTimeout)
	publisher := initPublisher(cfg, serverApp)

	bookingService := service.NewBookingService(
		bookingRepo,
		lockRepo,
		bookingValidator,
		checker,
		events.NewAvailabilityPublisher(publisher, ServiceName, cfg.Log.Component("events")),
		cfg,
	)

	cfg.Log.Info("Booking service initialized",
		"database", cfg.MongoDatabaseName,
		"availability_url", cfg.AvailabilityURL,
	)
	return bookingService
}

func initPublisher(cfg *config.Config, serverApp *app.Application) kafka.Publisher {
	if !cfg.EventsEnabled {
		cfg.Log.Info("Booking events disabled")
		return kafka.NoopPublisher{}
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventsTopic, cfg.BookingEventsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafka_middleware.NewMetrics(serverApp.Registry()).ProducerMiddleware())

	serverApp.AddCloser(producer)
	return producer
}
