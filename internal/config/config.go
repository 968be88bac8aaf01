package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress        string
	DatabaseURI       string
	GatewayAddress    string
	GatewaySigningKey string
	JWTSecret         string
	OrderExpiryWindow time.Duration
	SweepInterval     time.Duration
	WorkerPoolSize    int
	ShutdownTimeout   time.Duration
	SweepBatchSize    int
}

const (
	defaultRunAddress        = ":8080"
	defaultJWTSecret         = "change-me-in-production"
	defaultOrderExpiryWindow = 30 * time.Minute
	defaultSweepInterval     = time.Minute
	defaultWorkerPoolSize    = 4
	defaultShutdownTimeout   = 10 * time.Second
	defaultSweepBatchSize    = 32
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:        getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:       getString(lookup, "DATABASE_URI", ""),
		GatewayAddress:    getString(lookup, "PAYMENT_GATEWAY_ADDRESS", ""),
		GatewaySigningKey: getString(lookup, "PAYMENT_SIGNING_KEY", ""),
		JWTSecret:         getString(lookup, "JWT_SECRET", defaultJWTSecret),
		OrderExpiryWindow: getDuration(lookup, "ORDER_EXPIRY_WINDOW", defaultOrderExpiryWindow),
		SweepInterval:     getDuration(lookup, "SWEEP_INTERVAL", defaultSweepInterval),
		WorkerPoolSize:    getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:   getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		SweepBatchSize:    getInt(lookup, "SWEEP_BATCH_SIZE", defaultSweepBatchSize),
	}

	fs := flag.NewFlagSet("foodcourt", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		expiryWindowStr    = cfg.OrderExpiryWindow.String()
		sweepIntervalStr   = cfg.SweepInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.GatewayAddress, "g", cfg.GatewayAddress, "Payment gateway base URL")
	fs.StringVar(&cfg.GatewaySigningKey, "signing-key", cfg.GatewaySigningKey, "Shared secret for gateway signatures")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent sweep workers")
	fs.StringVar(&expiryWindowStr, "expiry-window", expiryWindowStr, "Unpaid order lifetime")
	fs.StringVar(&sweepIntervalStr, "sweep-interval", sweepIntervalStr, "Interval between expiry sweeps")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.IntVar(&cfg.SweepBatchSize, "sweep-batch", cfg.SweepBatchSize, "Maximum orders per sweep batch")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.OrderExpiryWindow, err = time.ParseDuration(expiryWindowStr); err != nil {
		return nil, fmt.Errorf("invalid expiry window: %w", err)
	}

	if cfg.SweepInterval, err = time.ParseDuration(sweepIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid sweep interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = string(content)
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.SweepBatchSize <= 0 {
		cfg.SweepBatchSize = defaultSweepBatchSize
	}

	if cfg.OrderExpiryWindow <= 0 {
		cfg.OrderExpiryWindow = defaultOrderExpiryWindow
	}

	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.GatewayAddress == "" {
		return nil, fmt.Errorf("payment gateway address must be provided")
	}

	if cfg.GatewaySigningKey == "" {
		return nil, fmt.Errorf("payment signing key must be provided")
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
