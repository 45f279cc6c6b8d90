package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvAdminAPIKey = "ADMIN_API_KEY"

	EnvKafkaBrokers    = "KAFKA_BROKERS"
	EnvKafkaClaimTopic = "KAFKA_CLAIM_TOPIC"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvClaimLockTTL       = "CLAIM_LOCK_TTL"
	EnvClaimRetryAttempts = "CLAIM_RETRY_ATTEMPTS"
	EnvClaimRetryBase     = "CLAIM_RETRY_BASE"

	EnvDefaultSlotDurationMin = "DEFAULT_SLOT_DURATION_MIN"
	EnvDefaultMaxSelections   = "DEFAULT_MAX_SELECTIONS"
	EnvMaxSlotsPerRequest     = "MAX_SLOTS_PER_REQUEST"
	EnvInviteTokenBytes       = "INVITE_TOKEN_BYTES"
)
