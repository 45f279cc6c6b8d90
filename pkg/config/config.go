package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"slotbook/pkg/client"
	"slotbook/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	AdminAPIKey string

	KafkaBrokers    []string
	KafkaClaimTopic string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	ClaimLockTTL       time.Duration
	ClaimRetryAttempts int
	ClaimRetryBase     time.Duration

	DefaultSlotDurationMin int
	DefaultMaxSelections   int
	MaxSlotsPerRequest     int
	InviteTokenBytes       int

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		AdminAPIKey: getEnvStr(EnvAdminAPIKey, ""),

		KafkaBrokers:    getEnvList(EnvKafkaBrokers),
		KafkaClaimTopic: getEnvStr(EnvKafkaClaimTopic, DefaultKafkaClaimTopic),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		ClaimLockTTL:       getEnvDuration(EnvClaimLockTTL, DefaultClaimLockTTL),
		ClaimRetryAttempts: getEnvNum(EnvClaimRetryAttempts, DefaultClaimRetryAttempts),
		ClaimRetryBase:     getEnvDuration(EnvClaimRetryBase, DefaultClaimRetryBase),

		DefaultSlotDurationMin: getEnvNum(EnvDefaultSlotDurationMin, DefaultDefaultSlotDurationMin),
		DefaultMaxSelections:   getEnvNum(EnvDefaultMaxSelections, DefaultDefaultMaxSelections),
		MaxSlotsPerRequest:     getEnvNum(EnvMaxSlotsPerRequest, DefaultMaxSlotsPerRequest),
		InviteTokenBytes:       getEnvNum(EnvInviteTokenBytes, DefaultInviteTokenBytes),

		Log: logger.New(logger.Config{
			Level:   getEnvStr(EnvLogLevel, "info"),
			Format:  getEnvStr(EnvLogFormat, logger.FormatJSON),
			Service: serviceName,
		}),
		Client: client.NewClient(),
	}

	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errs = append(errs, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errs = append(errs, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}

	if cfg.MongoDatabaseName == "" {
		errs = append(errs, "MongoDatabaseName cannot be empty")
	}

	if cfg.AdminAPIKey == "" {
		errs = append(errs, "AdminAPIKey cannot be empty")
	}

	if cfg.MongoConnTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}
	if cfg.RateLimitRequests <= 0 {
		errs = append(errs, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RateLimitWindow <= 0 {
		errs = append(errs, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.MaxRequestSize <= 0 {
		errs = append(errs, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.ClaimLockTTL <= 0 {
		errs = append(errs, fmt.Sprintf("ClaimLockTTL must be positive, got: %s", cfg.ClaimLockTTL))
	}
	if cfg.ClaimRetryAttempts < 1 || cfg.ClaimRetryAttempts > 10 {
		errs = append(errs, fmt.Sprintf("ClaimRetryAttempts must be between 1 and 10, got: %d", cfg.ClaimRetryAttempts))
	}
	if cfg.ClaimRetryBase <= 0 {
		errs = append(errs, fmt.Sprintf("ClaimRetryBase must be positive, got: %s", cfg.ClaimRetryBase))
	}

	if cfg.DefaultSlotDurationMin <= 0 {
		errs = append(errs, fmt.Sprintf("DefaultSlotDurationMin must be positive, got: %d", cfg.DefaultSlotDurationMin))
	}
	if cfg.DefaultMaxSelections <= 0 {
		errs = append(errs, fmt.Sprintf("DefaultMaxSelections must be positive, got: %d", cfg.DefaultMaxSelections))
	}
	if cfg.MaxSlotsPerRequest <= 0 {
		errs = append(errs, fmt.Sprintf("MaxSlotsPerRequest must be positive, got: %d", cfg.MaxSlotsPerRequest))
	}
	if cfg.InviteTokenBytes < 16 {
		errs = append(errs, fmt.Sprintf("InviteTokenBytes must be at least 16, got: %d", cfg.InviteTokenBytes))
	}

	if len(errs) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, e := range errs {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, e)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"admin_api_key_set", cfg.AdminAPIKey != "",
		"kafka_brokers", strings.Join(cfg.KafkaBrokers, ","),
		"kafka_claim_topic", cfg.KafkaClaimTopic,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"claim_lock_ttl", cfg.ClaimLockTTL,
		"claim_retry_attempts", cfg.ClaimRetryAttempts,
		"claim_retry_base", cfg.ClaimRetryBase,
		"default_slot_duration_min", cfg.DefaultSlotDurationMin,
		"default_max_selections", cfg.DefaultMaxSelections,
		"max_slots_per_request", cfg.MaxSlotsPerRequest,
		"invite_token_bytes", cfg.InviteTokenBytes,
	)
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
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
