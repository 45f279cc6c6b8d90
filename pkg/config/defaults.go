package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "slotbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultKafkaClaimTopic = "booking.claims"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultClaimLockTTL       = 10 * time.Second
	DefaultClaimRetryAttempts = 3
	DefaultClaimRetryBase     = 50 * time.Millisecond

	DefaultDefaultSlotDurationMin = 30
	DefaultDefaultMaxSelections   = 1
	DefaultMaxSlotsPerRequest     = 500
	DefaultInviteTokenBytes       = 32

	DefaultPaginationLimit = 100
)
