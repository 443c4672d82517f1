package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/facegate/attendance-engine/ledger"
)

var recordOut bool

var recordCmd = &cobra.Command{
	Use:   "record <name>",
	Short: "Record a check-in (default) or check-out for a person",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecord,
}

func init() {
	recordCmd.Flags().BoolVar(&recordOut, "out", false, "record a check-out instead of a check-in")
}

func runRecord(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.close()

	name := args[0]
	now := time.Now()

	kind := ledger.EventCheckIn
	if recordOut {
		kind = ledger.EventCheckOut
	}

	identity, err := eng.ids.Resolve(name)
	if err != nil {
		return err
	}
	outcome, err := eng.tracker.RecordEvent(cmd.Context(), identity, kind, now)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s): %s\n", identity.Name, identity.ID, outcome)
	return nil
}
