package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvDataSource  = "DATA_SOURCE"
	EnvPostgresURL = "POSTGRES_URL"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"
	EnvSlotCacheTTL  = "SLOT_CACHE_TTL"
	EnvCacheDisabled = "SLOT_CACHE_DISABLED"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"
	EnvTimeZone  = "TIME_ZONE"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvSlotIntervalMin       = "SLOT_INTERVAL_MIN"
	EnvAdvanceBookingDays    = "ADVANCE_BOOKING_DAYS"
	EnvMaxServiceDurationMin = "MAX_SERVICE_DURATION_MIN"
	EnvSlotLockTTL           = "SLOT_LOCK_TTL"

	EnvBreakerFailureThreshold = "BREAKER_FAILURE_THRESHOLD"
	EnvBreakerOpenTimeout      = "BREAKER_OPEN_TIMEOUT"
	EnvBreakerInterval         = "BREAKER_INTERVAL"

	EnvEventsEnabled         = "EVENTS_ENABLED"
	EnvBookingEventsTopic    = "KAFKA_BOOKING_EVENTS_TOPIC"
	EnvBookingEventsDLQTopic = "KAFKA_BOOKING_EVENTS_DLQ_TOPIC"
	EnvAvailabilityGroupID   = "KAFKA_AVAILABILITY_GROUP_ID"

	EnvAvailabilityURL = "AVAILABILITY_URL"
	EnvPhoneRegion     = "PHONE_REGION"
)
