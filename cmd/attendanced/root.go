/*
root.go - Command tree and shared bootstrap

PURPOSE:
  Defines the cobra root command and the engine bootstrap every
  subcommand shares: load configuration, open the ledger container,
  the identity registry and the event journal, then assemble the
  tracker.

COMMANDS:
  serve    Run the HTTP API server
  status   Print today's in/out status
  record   Record a check-in or check-out for a person
  report   Print monthly aggregates
  export   Write day records as CSV
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/facegate/attendance-engine/config"
	"github.com/facegate/attendance-engine/ledger"
	"github.com/facegate/attendance-engine/registry"
	"github.com/facegate/attendance-engine/store/journal"
	"github.com/facegate/attendance-engine/store/ledgerfile"
)

var rootCmd = &cobra.Command{
	Use:   "attendanced",
	Short: "Local attendance ledger for a recognition gate",
	Long: `attendanced keeps a durable per-person attendance ledger: check-ins,
check-outs, punctuality and overtime, with monthly aggregates. Data
lives in a single local directory (ATTEND_DATA_DIR, default ./data).`,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
}

// engine bundles everything a command needs.
type engine struct {
	cfg     *config.Config
	tracker *ledger.Tracker
	ids     *registry.Registry
	journal *journal.Journal
}

func (e *engine) close() {
	if e.journal != nil {
		e.journal.Close()
	}
}

func openEngine() (*engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	store, err := ledgerfile.Open(cfg.LedgerPath())
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	ids, err := registry.Open(cfg.RegistryPath())
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	j, err := journal.Open(cfg.JournalPath())
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	tracker := ledger.New(store, ids, cfg.Rules(),
		ledger.WithEventSink(j),
		ledger.WithCooldown(cfg.Cooldown),
	)

	return &engine{cfg: cfg, tracker: tracker, ids: ids, journal: j}, nil
}
