/*
config.go - Environment-driven configuration

PURPOSE:
  All runtime knobs come from ATTEND_* environment variables, with a
  .env file honored when present. Every setting has a working default
  so a bare `attendanced serve` runs out of the box against ./data.
*/
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/facegate/attendance-engine/ledger"
)

type Config struct {
	// DataDir holds the ledger container, identity index and journal.
	DataDir string

	// Listen is the HTTP bind address for the API server.
	Listen string

	// PunctualityCutoff is the time of day after which a first
	// check-in counts as late.
	PunctualityCutoff ledger.TimeOfDay

	// OvertimeCutoff is the time of day after which a check-out
	// accrues overtime.
	OvertimeCutoff ledger.TimeOfDay

	// Cooldown is the minimum gap between accepted observations of
	// the same person. Zero disables throttling.
	Cooldown time.Duration

	// AllowReopen lets a check-in after a check-out reopen the day.
	AllowReopen bool
}

// Load reads configuration from the environment, after loading .env
// if one exists in the working directory.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARNING] could not load .env: %v", err)
	}

	cfg := &Config{
		DataDir:           getenv("ATTEND_DATA_DIR", "./data"),
		Listen:            getenv("ATTEND_LISTEN", ":8080"),
		PunctualityCutoff: ledger.MustTimeOfDay("08:00:00"),
		OvertimeCutoff:    ledger.MustTimeOfDay("17:00:00"),
		Cooldown:          5 * time.Minute,
		AllowReopen:       true,
	}

	if v := os.Getenv("ATTEND_PUNCTUALITY_CUTOFF"); v != "" {
		tod, err := ledger.ParseTimeOfDay(v)
		if err != nil {
			return nil, fmt.Errorf("ATTEND_PUNCTUALITY_CUTOFF: %w", err)
		}
		cfg.PunctualityCutoff = tod
	}
	if v := os.Getenv("ATTEND_OVERTIME_CUTOFF"); v != "" {
		tod, err := ledger.ParseTimeOfDay(v)
		if err != nil {
			return nil, fmt.Errorf("ATTEND_OVERTIME_CUTOFF: %w", err)
		}
		cfg.OvertimeCutoff = tod
	}
	if v := os.Getenv("ATTEND_COOLDOWN"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("ATTEND_COOLDOWN: %w", err)
		}
		if d < 0 {
			return nil, fmt.Errorf("ATTEND_COOLDOWN: negative duration %s", v)
		}
		cfg.Cooldown = d
	}
	if v := os.Getenv("ATTEND_ALLOW_REOPEN"); v != "" {
		switch v {
		case "true", "1", "yes":
			cfg.AllowReopen = true
		case "false", "0", "no":
			cfg.AllowReopen = false
		default:
			return nil, fmt.Errorf("ATTEND_ALLOW_REOPEN: expected boolean, got %q", v)
		}
	}

	return cfg, nil
}

// Rules builds the derivation rules the tracker runs with.
func (c *Config) Rules() ledger.Rules {
	return ledger.Rules{
		PunctualityCutoff: c.PunctualityCutoff,
		OvertimeCutoff:    c.OvertimeCutoff,
		AllowReopen:       c.AllowReopen,
	}
}

// LedgerPath is the attendance container location.
func (c *Config) LedgerPath() string { return filepath.Join(c.DataDir, "attendance.json") }

// RegistryPath is the identity index location.
func (c *Config) RegistryPath() string { return filepath.Join(c.DataDir, "identities.csv") }

// JournalPath is the event journal location.
func (c *Config) JournalPath() string { return filepath.Join(c.DataDir, "journal.db") }

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
