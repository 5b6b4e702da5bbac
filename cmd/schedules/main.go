package main

import (
	"salonbook/internal/schedules/handler"
	"salonbook/internal/schedules/repository"
	"salonbook/internal/schedules/service"
	"salonbook/internal/schedules/validator"
	"salonbook/pkg/app"
	"salonbook/pkg/config"
	"salonbook/pkg/contracts"
	"salonbook/pkg/events"
	"salonbook/pkg/kafka"
	kafka_config "salonbook/pkg/kafka/config"
	kafka_middleware "salonbook/pkg/kafka/middleware"
)

const ServiceName = "schedules"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Schedules service")
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(initHandlers(cfg, serverApp)...)
	serverApp.Run()
}

func initHandlers(cfg *config.Config, serverApp *app.Application) []contracts.Handler {
	scheduleValidator := validator.NewScheduleValidator(cfg.Log)
	publisher := events.NewAvailabilityPublisher(initPublisher(cfg, serverApp), ServiceName, cfg.Log.Component("events"))

	workingHoursService := service.NewWorkingHoursService(
		repository.NewMongoWorkingHoursRepository(cfg),
		scheduleValidator,
		publisher,
		cfg,
	)
	blackoutService := service.NewBlackoutService(
		repository.NewMongoBlackoutRepository(cfg),
		scheduleValidator,
		publisher,
		cfg,
	)
	settingsService := service.NewSettingsService(
		repository.NewMongoSettingsRepository(cfg),
		scheduleValidator,
		publisher,
		cfg,
	)

	cfg.Log.Info("Schedules service initialized", "database", cfg.MongoDatabaseName)
	return []contracts.Handler{
		handler.NewWorkingHoursHandler(workingHoursService, cfg.Log),
		handler.NewBlackoutHandler(blackoutService, cfg.Log),
		handler.NewSettingsHandler(settingsService, cfg.Log),
	}
}

func initPublisher(cfg *config.Config, serverApp *app.Application) kafka.Publisher {
	if !cfg.EventsEnabled {
		cfg.Log.Info("Schedule events disabled")
		return kafka.NoopPublisher{}
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventsTopic, cfg.BookingEventsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafka_middleware.NewMetrics(serverApp.Registry()).ProducerMiddleware())

	serverApp.AddCloser(producer)
	return producer
}
