package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/facegate/attendance-engine/ledger"
)

var reportCmd = &cobra.Command{
	Use:   "report [YYYY-MM]",
	Short: "Print monthly aggregates (defaults to the current month)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.close()

	month := ledger.MonthKeyOf(time.Now())
	if len(args) == 1 {
		if month, err = ledger.ParseMonthKey(args[0]); err != nil {
			return err
		}
	}

	reports, err := eng.tracker.MonthlyReport(month)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Printf("No records for %s.\n", month)
		return nil
	}

	fmt.Printf("Attendance report for %s\n\n", month)
	fmt.Printf("%-20s %5s %10s %5s %10s %5s %10s\n",
		"Name", "Days", "Worked", "Late", "LateBy", "OT", "OTBy")
	for _, r := range reports {
		fmt.Printf("%-20s %5d %10s %5d %10s %5d %10s\n",
			r.Identity.Name,
			r.Summary.WorkingDays,
			ledger.FormatMinutes(r.Summary.TotalWorked),
			r.Summary.DaysLate,
			ledger.FormatMinutes(r.Summary.TotalLate),
			r.Summary.OvertimeDays,
			ledger.FormatMinutes(r.Summary.TotalOvertime),
		)
	}
	return nil
}
