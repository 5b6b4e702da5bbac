package main

import (
	"salonbook/internal/availability/cache"
	"salonbook/internal/availability/events"
	"salonbook/internal/availability/handler"
	"salonbook/internal/availability/metrics"
	"salonbook/internal/availability/service"
	"salonbook/internal/availability/source"
	"salonbook/pkg/app"
	"salonbook/pkg/config"
	"salonbook/pkg/kafka"
	kafka_config "salonbook/pkg/kafka/config"
	kafka_middleware "salonbook/pkg/kafka/middleware"
)

const ServiceName = "availability"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Availability service")

	serverApp := app.NewApplication(cfg)
	m := metrics.NewAvailabilityMetrics(serverApp.Registry())

	src := initSource(cfg, m)
	slotCache := initCache(cfg)
	availabilityService := service.NewAvailabilityService(src, slotCache, m, cfg)

	if cfg.EventsEnabled {
		initInvalidator(cfg, serverApp, slotCache, m)
	}

	serverApp.SetApp(handler.NewAvailabilityHandler(availabilityService, cfg.Log))
	serverApp.Run()
}

func initSource(cfg *config.Config, m *metrics.AvailabilityMetrics) source.Source {
	var src source.Source
	switch cfg.DataSource {
	case config.DataSourcePostgres:
		cfg.SetPostgres()
		src = source.NewPostgresSource(cfg.Client.Postgres)
	default:
		cfg.SetMongo()
		src = source.NewMongoSource(cfg.Client.Mongo, cfg.MongoDatabaseName)
	}

	cfg.Log.Info("Availability data source initialized", "data_source", cfg.DataSource)
	return source.NewBreakerSource(src, source.BreakerConfig{
		Name:             cfg.DataSource,
		FailureThreshold: cfg.BreakerFailureThreshold,
		Interval:         cfg.BreakerInterval,
		OpenTimeout:      cfg.BreakerOpenTimeout,
		OnStateChange:    m.ObserveBreakerState,
	}, cfg.Log)
}

func initCache(cfg *config.Config) cache.SlotCache {
	if cfg.CacheDisabled {
		cfg.Log.Info("Slot cache disabled")
		return cache.Noop{}
	}
	cfg.SetRedis()
	return cache.NewRedisCache(cfg.Client.Redis, cfg.SlotCacheTTL)
}

// initInvalidator consumes booking, blackout, working hours and settings
// events and drops the cached grids they affect.
func initInvalidator(cfg *config.Config, serverApp *app.Application, slotCache cache.SlotCache, m *metrics.AvailabilityMetrics) {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	log := cfg.Log.Component("slot-cache-invalidator")
	invalidator := events.NewInvalidator(slotCache, m, cfg.Location, log)
	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.BookingEventsTopic,
		cfg.AvailabilityGroupID,
		cfg.BookingEventsDLQTopic,
		invalidator.Handle,
		log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	kafkaMetrics := kafka_middleware.NewMetrics(serverApp.Registry())
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(log))
	consumer.Use(kafkaMetrics.ConsumerMiddleware())

	serverApp.AddWorker(app.Worker{Name: "slot-cache-invalidator", Run: consumer.Start})
	serverApp.AddCloser(consumer)
}
