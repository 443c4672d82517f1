package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/facegate/attendance-engine/ledger"
)

var statusCmd = &cobra.Command{
	Use:   "status [name]",
	Short: "Print today's in/out status",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.close()

	now := time.Now()

	if len(args) == 1 {
		printStatus(eng.tracker.StatusOf(args[0], now))
		return nil
	}

	statuses := eng.tracker.TodaySummary(now)
	if len(statuses) == 0 {
		fmt.Println("No one enrolled yet.")
		return nil
	}
	for _, s := range statuses {
		printStatus(s)
	}
	return nil
}

func printStatus(s ledger.Status) {
	line := fmt.Sprintf("%-20s %-4s", s.Identity.Name, s.Presence)
	if s.FirstIn != nil {
		line += fmt.Sprintf("  in %s", s.FirstIn.Format("15:04"))
	}
	if s.LastOut != nil {
		line += fmt.Sprintf("  out %s", s.LastOut.Format("15:04"))
	}
	if s.Worked > 0 {
		line += fmt.Sprintf("  worked %s", ledger.FormatMinutes(s.Worked))
	}
	if s.Punctuality == ledger.Late {
		line += fmt.Sprintf("  late %s", ledger.FormatMinutes(s.LateBy))
	}
	if s.OvertimeBy > 0 {
		line += fmt.Sprintf("  overtime %s", ledger.FormatMinutes(s.OvertimeBy))
	}
	fmt.Println(line)
}
