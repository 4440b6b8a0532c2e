package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress        string
	DatabaseURI       string
	RedisURL          string
	AMQPURL           string
	EventsQueue       string
	TokenSecret       string
	TokenTTL          time.Duration
	LogLevel          string
	ReservationTTL    time.Duration
	SweepInterval     time.Duration
	SweepBatchSize    int
	SweepWorkers      int
	OperationTimeout  time.Duration
	LockTTL           time.Duration
	LockRetryInterval time.Duration
	ShutdownTimeout   time.Duration
}

const (
	defaultRunAddress        = ":8080"
	defaultTokenSecret       = "change-me-in-production"
	defaultTokenTTL          = 24 * time.Hour
	defaultEventsQueue       = "ticketmart.events"
	defaultLogLevel          = "info"
	defaultReservationTTL    = 15 * time.Minute
	defaultSweepInterval     = 10 * time.Second
	defaultSweepBatchSize    = 100
	defaultSweepWorkers      = 4
	defaultOperationTimeout  = 5 * time.Second
	defaultLockTTL           = 10 * time.Second
	defaultLockRetryInterval = 25 * time.Millisecond
	defaultShutdownTimeout   = 10 * time.Second
)

// Load parses configuration from flags and environment variables. A .env file in the working
// directory is applied first when present; variables already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:        getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:       getString(lookup, "DATABASE_URI", ""),
		RedisURL:          getString(lookup, "REDIS_URL", ""),
		AMQPURL:           getString(lookup, "AMQP_URL", ""),
		EventsQueue:       getString(lookup, "EVENTS_QUEUE", defaultEventsQueue),
		TokenSecret:       getString(lookup, "TOKEN_SECRET", defaultTokenSecret),
		TokenTTL:          getDuration(lookup, "TOKEN_TTL", defaultTokenTTL),
		LogLevel:          getString(lookup, "LOG_LEVEL", defaultLogLevel),
		ReservationTTL:    getDuration(lookup, "RESERVATION_TTL", defaultReservationTTL),
		SweepInterval:     getDuration(lookup, "SWEEP_INTERVAL", defaultSweepInterval),
		SweepBatchSize:    getInt(lookup, "SWEEP_BATCH_SIZE", defaultSweepBatchSize),
		SweepWorkers:      getInt(lookup, "SWEEP_WORKERS", defaultSweepWorkers),
		OperationTimeout:  getDuration(lookup, "OPERATION_TIMEOUT", defaultOperationTimeout),
		LockTTL:           getDuration(lookup, "LOCK_TTL", defaultLockTTL),
		LockRetryInterval: getDuration(lookup, "LOCK_RETRY_INTERVAL", defaultLockRetryInterval),
		ShutdownTimeout:   getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("ticketmart", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		ttlStr             = cfg.ReservationTTL.String()
		sweepIntervalStr   = cfg.SweepInterval.String()
		opTimeoutStr       = cfg.OperationTimeout.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN, empty keeps data in memory")
	fs.StringVar(&cfg.RedisURL, "r", cfg.RedisURL, "Redis URL for distributed ticket locks")
	fs.StringVar(&cfg.AMQPURL, "q", cfg.AMQPURL, "RabbitMQ URL for order events")
	fs.StringVar(&cfg.TokenSecret, "s", cfg.TokenSecret, "Secret for verifying bearer tokens")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&ttlStr, "ttl", ttlStr, "Reservation window")
	fs.StringVar(&sweepIntervalStr, "sweep", sweepIntervalStr, "Interval between expiration sweeps")
	fs.StringVar(&opTimeoutStr, "op-timeout", opTimeoutStr, "Timeout of a single reservation operation")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.IntVar(&cfg.SweepWorkers, "sweep-workers", cfg.SweepWorkers, "Number of concurrent expiration workers")
	fs.IntVar(&cfg.SweepBatchSize, "sweep-batch", cfg.SweepBatchSize, "Maximum orders expired per sweep")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.ReservationTTL, err = time.ParseDuration(ttlStr); err != nil {
		return nil, fmt.Errorf("invalid reservation ttl: %w", err)
	}

	if cfg.SweepInterval, err = time.ParseDuration(sweepIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid sweep interval: %w", err)
	}

	if cfg.OperationTimeout, err = time.ParseDuration(opTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid operation timeout: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("TOKEN_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read token secret file: %w", err)
		}
		cfg.TokenSecret = strings.TrimSpace(string(content))
	}

	if cfg.ReservationTTL <= 0 {
		cfg.ReservationTTL = defaultReservationTTL
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}

	if cfg.SweepBatchSize <= 0 {
		cfg.SweepBatchSize = defaultSweepBatchSize
	}

	if cfg.SweepWorkers <= 0 {
		cfg.SweepWorkers = defaultSweepWorkers
	}

	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = defaultOperationTimeout
	}

	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaultLockTTL
	}

	if cfg.LockRetryInterval <= 0 {
		cfg.LockRetryInterval = defaultLockRetryInterval
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.TokenSecret == "" {
		return nil, fmt.Errorf("token secret must not be empty")
	}

	if cfg.LockTTL <= cfg.OperationTimeout {
		return nil, fmt.Errorf("lock ttl %v must exceed operation timeout %v", cfg.LockTTL, cfg.OperationTimeout)
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
