package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"STORE_DRIVER", "INVENTORY_FILE", "DATABASE_URL", "HTTP_ADDR",
		"LOG_LEVEL", "LOW_STOCK_THRESHOLD", "METRICS_ENABLED", "METRICS_TOKEN"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Driver != DriverFile || cfg.File != "data.json" {
		t.Fatalf("driver/file = %q/%q", cfg.Driver, cfg.File)
	}
	if cfg.HTTPAddr != ":8080" || cfg.LogLevel != "info" {
		t.Fatalf("addr/level = %q/%q", cfg.HTTPAddr, cfg.LogLevel)
	}
	if cfg.LowStockThreshold != 5 || !cfg.MetricsEnabled {
		t.Fatalf("threshold/metrics = %d/%v", cfg.LowStockThreshold, cfg.MetricsEnabled)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/inv")
	t.Setenv("LOW_STOCK_THRESHOLD", "12")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Driver != DriverPostgres || cfg.DatabaseURL != "postgres://localhost/inv" {
		t.Fatalf("got %+v", cfg)
	}
	if cfg.LowStockThreshold != 12 || cfg.MetricsEnabled {
		t.Fatalf("got %+v", cfg)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("STORE_DRIVER", "file")
	t.Setenv("LOW_STOCK_THRESHOLD", "five")
	t.Setenv("METRICS_ENABLED", "maybe")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, want := range []string{"LOW_STOCK_THRESHOLD", "METRICS_ENABLED"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoadLeavesValidationToCaller(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Validate() == nil {
		t.Fatalf("expected Validate to reject postgres without url")
	}

	cfg.Driver = DriverMemory
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate after override: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"file", Config{Driver: DriverFile, File: "x.json"}, true},
		{"file without path", Config{Driver: DriverFile}, false},
		{"postgres without url", Config{Driver: DriverPostgres}, false},
		{"memory", Config{Driver: DriverMemory}, true},
		{"unknown", Config{Driver: "redis"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err == nil) != tc.ok {
				t.Fatalf("Validate() = %v, ok=%v", err, tc.ok)
			}
		})
	}
}
