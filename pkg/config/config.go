package config

import (
	"fmt"
	"os"
	"regexp"
	"salonbook/pkg/client"
	"salonbook/pkg/logger"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DataSourceMongo    = "mongo"
	DataSourcePostgres = "postgres"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	DataSource  string
	PostgresURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SlotCacheTTL  time.Duration
	CacheDisabled bool

	Port     string
	TimeZone string
	Location *time.Location

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	RateLimitRequests int
	RateLimitWindow   time.Duration

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	SlotIntervalMin       int
	AdvanceBookingDays    int
	MaxServiceDurationMin int
	SlotLockTTL           time.Duration

	BreakerFailureThreshold int
	BreakerOpenTimeout      time.Duration
	BreakerInterval         time.Duration

	EventsEnabled         bool
	BookingEventsTopic    string
	BookingEventsDLQTopic string
	AvailabilityGroupID   string

	AvailabilityURL string
	PhoneRegion     string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		DataSource:  strings.ToLower(getEnvStr(EnvDataSource, DefaultDataSource)),
		PostgresURL: getEnvStr(EnvPostgresURL, DefaultPostgresURL),

		RedisAddr:     getEnvStr(EnvRedisAddr, DefaultRedisAddr),
		RedisPassword: getEnvStr(EnvRedisPassword, ""),
		RedisDB:       getEnvNum(EnvRedisDB, DefaultRedisDB),
		SlotCacheTTL:  getEnvDuration(EnvSlotCacheTTL, DefaultSlotCacheTTL),
		CacheDisabled: getEnvBool(EnvCacheDisabled, DefaultCacheDisabled),

		Port:     getEnvStr(EnvPort, DefaultPort),
		TimeZone: getEnvStr(EnvTimeZone, DefaultTimeZone),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		SlotIntervalMin:       getEnvNum(EnvSlotIntervalMin, DefaultSlotIntervalMin),
		AdvanceBookingDays:    getEnvNum(EnvAdvanceBookingDays, DefaultAdvanceBookingDays),
		MaxServiceDurationMin: getEnvNum(EnvMaxServiceDurationMin, DefaultMaxServiceDurationMin),
		SlotLockTTL:           getEnvDuration(EnvSlotLockTTL, DefaultSlotLockTTL),

		BreakerFailureThreshold: getEnvNum(EnvBreakerFailureThreshold, DefaultBreakerFailureThreshold),
		BreakerOpenTimeout:      getEnvDuration(EnvBreakerOpenTimeout, DefaultBreakerOpenTimeout),
		BreakerInterval:         getEnvDuration(EnvBreakerInterval, DefaultBreakerInterval),

		EventsEnabled:         getEnvBool(EnvEventsEnabled, DefaultEventsEnabled),
		BookingEventsTopic:    getEnvStr(EnvBookingEventsTopic, DefaultBookingEventsTopic),
		BookingEventsDLQTopic: getEnvStr(EnvBookingEventsDLQTopic, DefaultBookingEventsDLQTopic),
		AvailabilityGroupID:   getEnvStr(EnvAvailabilityGroupID, DefaultAvailabilityGroupID),

		AvailabilityURL: getEnvStr(EnvAvailabilityURL, DefaultAvailabilityURL),
		PhoneRegion:     strings.ToUpper(getEnvStr(EnvPhoneRegion, DefaultPhoneRegion)),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    getEnvStr(EnvLogFormat, DefaultLogFormat),
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetPostgres() {
	cfg.Client.SetPostgres(cfg.Log, cfg.PostgresURL, cfg.MongoConnTimeout)
}

func (cfg *Config) SetRedis() {
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		errors = append(errors, fmt.Sprintf("TimeZone must be a valid IANA zone name, got: %s", cfg.TimeZone))
	} else {
		cfg.Location = loc
	}

	switch cfg.DataSource {
	case DataSourceMongo:
		if cfg.MongoURI == "" {
			errors = append(errors, "MongoURI cannot be empty")
		} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactURI(cfg.MongoURI)))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
	case DataSourcePostgres:
		if !regexp.MustCompile(`^postgres(ql)?://`).MatchString(cfg.PostgresURL) {
			errors = append(errors, fmt.Sprintf("PostgresURL must start with 'postgres://' or 'postgresql://', got: %s", redactURI(cfg.PostgresURL)))
		}
	default:
		errors = append(errors, fmt.Sprintf("DataSource must be %q or %q, got: %s", DataSourceMongo, DataSourcePostgres, cfg.DataSource))
	}

	if !cfg.CacheDisabled && cfg.RedisAddr == "" {
		errors = append(errors, "RedisAddr cannot be empty while the slot cache is enabled")
	}
	if cfg.SlotCacheTTL <= 0 {
		errors = append(errors, fmt.Sprintf("SlotCacheTTL must be positive, got: %s", cfg.SlotCacheTTL))
	}

	positiveDurations := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"SlotLockTTL", cfg.SlotLockTTL},
		{"BreakerOpenTimeout", cfg.BreakerOpenTimeout},
		{"BreakerInterval", cfg.BreakerInterval},
	}
	for _, d := range positiveDurations {
		if d.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}

	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.SlotIntervalMin <= 0 || cfg.SlotIntervalMin > 24*60 {
		errors = append(errors, fmt.Sprintf("SlotIntervalMin must be between 1 and 1440, got: %d", cfg.SlotIntervalMin))
	}
	if cfg.AdvanceBookingDays < 0 {
		errors = append(errors, fmt.Sprintf("AdvanceBookingDays cannot be negative, got: %d", cfg.AdvanceBookingDays))
	}
	if cfg.MaxServiceDurationMin <= 0 || cfg.MaxServiceDurationMin > 24*60 {
		errors = append(errors, fmt.Sprintf("MaxServiceDurationMin must be between 1 and 1440, got: %d", cfg.MaxServiceDurationMin))
	}
	if cfg.BreakerFailureThreshold <= 0 {
		errors = append(errors, fmt.Sprintf("BreakerFailureThreshold must be positive, got: %d", cfg.BreakerFailureThreshold))
	}

	if cfg.EventsEnabled {
		if cfg.BookingEventsTopic == "" {
			errors = append(errors, "BookingEventsTopic cannot be empty while events are enabled")
		}
		if cfg.BookingEventsTopic == cfg.BookingEventsDLQTopic {
			errors = append(errors, "BookingEventsDLQTopic must differ from BookingEventsTopic")
		}
	}

	if len(cfg.PhoneRegion) != 2 {
		errors = append(errors, fmt.Sprintf("PhoneRegion must be a two-letter ISO 3166 code, got: %s", cfg.PhoneRegion))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"data_source", cfg.DataSource,
		"mongo_uri", redactURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"postgres_url", redactURI(cfg.PostgresURL),
		"redis_addr", cfg.RedisAddr,
		"slot_cache_ttl", cfg.SlotCacheTTL,
		"slot_cache_disabled", cfg.CacheDisabled,
		"port", cfg.Port,
		"time_zone", cfg.TimeZone,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"slot_interval_min", cfg.SlotIntervalMin,
		"advance_booking_days", cfg.AdvanceBookingDays,
		"max_service_duration_min", cfg.MaxServiceDurationMin,
		"breaker_failure_threshold", cfg.BreakerFailureThreshold,
		"breaker_open_timeout", cfg.BreakerOpenTimeout,
		"events_enabled", cfg.EventsEnabled,
		"booking_events_topic", cfg.BookingEventsTopic,
	)
}

var credentialRegex = regexp.MustCompile(`(^[a-z+]+://)[^:/@]+:[^@]+@`)

func redactURI(uri string) string {
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
