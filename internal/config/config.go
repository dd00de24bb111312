// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	// Store backend: file, postgres or memory.
	Driver      string
	File        string
	DatabaseURL string

	HTTPAddr string
	LogLevel string

	LowStockThreshold int

	MetricsEnabled bool
	MetricsToken   string
}

// Load reads the environment, falling back to defaults. It reports values that
// fail to parse but leaves Validate to the caller, so flags can still override
// what the environment set.
func Load() (Config, error) {
	var errs []error

	cfg := Config{
		Driver:       strings.ToLower(getenv("STORE_DRIVER", DriverFile)),
		File:         getenv("INVENTORY_FILE", "data.json"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		MetricsToken: os.Getenv("METRICS_TOKEN"),
	}

	threshold, err := strconv.Atoi(getenv("LOW_STOCK_THRESHOLD", "5"))
	if err != nil {
		errs = append(errs, fmt.Errorf("LOW_STOCK_THRESHOLD: %w", err))
	}
	cfg.LowStockThreshold = threshold

	metrics, err := strconv.ParseBool(getenv("METRICS_ENABLED", "true"))
	if err != nil {
		errs = append(errs, fmt.Errorf("METRICS_ENABLED: %w", err))
	}
	cfg.MetricsEnabled = metrics

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Driver {
	case DriverFile:
		if c.File == "" {
			return errors.New("INVENTORY_FILE must not be empty")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want file, postgres or memory)", c.Driver)
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
