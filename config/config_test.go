package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facegate/attendance-engine/config"
	"github.com/facegate/attendance-engine/ledger"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, ledger.MustTimeOfDay("08:00:00"), cfg.PunctualityCutoff)
	assert.Equal(t, ledger.MustTimeOfDay("17:00:00"), cfg.OvertimeCutoff)
	assert.Equal(t, 5*time.Minute, cfg.Cooldown)
	assert.True(t, cfg.AllowReopen)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ATTEND_DATA_DIR", "/var/lib/attendance")
	t.Setenv("ATTEND_LISTEN", ":3000")
	t.Setenv("ATTEND_PUNCTUALITY_CUTOFF", "09:30")
	t.Setenv("ATTEND_OVERTIME_CUTOFF", "18:15:00")
	t.Setenv("ATTEND_COOLDOWN", "90s")
	t.Setenv("ATTEND_ALLOW_REOPEN", "false")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/attendance", cfg.DataDir)
	assert.Equal(t, ":3000", cfg.Listen)
	assert.Equal(t, ledger.TimeOfDay{Hour: 9, Minute: 30}, cfg.PunctualityCutoff)
	assert.Equal(t, ledger.TimeOfDay{Hour: 18, Minute: 15}, cfg.OvertimeCutoff)
	assert.Equal(t, 90*time.Second, cfg.Cooldown)
	assert.False(t, cfg.AllowReopen)

	rules := cfg.Rules()
	assert.False(t, rules.AllowReopen)
	assert.Equal(t, cfg.PunctualityCutoff, rules.PunctualityCutoff)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"ATTEND_PUNCTUALITY_CUTOFF": "noonish",
		"ATTEND_OVERTIME_CUTOFF":    "25:99",
		"ATTEND_COOLDOWN":           "five minutes",
		"ATTEND_ALLOW_REOPEN":       "maybe",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestPaths(t *testing.T) {
	t.Setenv("ATTEND_DATA_DIR", "/tmp/attend")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/tmp/attend", "attendance.json"), cfg.LedgerPath())
	assert.Equal(t, filepath.Join("/tmp/attend", "identities.csv"), cfg.RegistryPath())
	assert.Equal(t, filepath.Join("/tmp/attend", "journal.db"), cfg.JournalPath())
}

func TestLoad_NegativeCooldownRejected(t *testing.T) {
	t.Setenv("ATTEND_COOLDOWN", "-1m")

	_, err := config.Load()
	assert.Error(t, err)
}
