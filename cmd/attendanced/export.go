package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	exportFrom string
	exportTo   string
	exportFile string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write day records as CSV",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "start date (YYYY-MM-DD, inclusive)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "end date (YYYY-MM-DD, inclusive)")
	exportCmd.Flags().StringVarP(&exportFile, "output", "o", "", "output file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.close()

	from, err := parseDateFlag(exportFrom)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	to, err := parseDateFlag(exportTo)
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}

	out := os.Stdout
	if exportFile != "" {
		f, err := os.Create(exportFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	return eng.tracker.ExportCSV(out, from, to)
}

func parseDateFlag(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
