/*
export.go - Flat tabular export for external reporting tools

PURPOSE:
  Serializes all populated DayRecords (optionally date-filtered) to
  CSV. Hour totals are rendered with decimal arithmetic so the report
  column never carries float artifacts.
*/
package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var exportHeader = []string{
	"Name", "User ID", "Date", "Day",
	"Time In", "Time Out", "Total", "Status", "Time Late", "Time OT", "Hours",
}

// ExportCSV writes every day record with a check-in to w, sorted by
// date then name. Nil bounds leave that side of the range open; bounds
// are inclusive and compared at day granularity.
func (t *Tracker) ExportCSV(w io.Writer, from, to *time.Time) error {
	var rows [][]string
	t.store.View(func(st *State) {
		for _, sheet := range st.Sheets {
			for i := range sheet.Days {
				rec := &sheet.Days[i]
				if rec.FirstIn == nil || !inRange(rec.Date, from, to) {
					continue
				}
				rows = append(rows, exportRow(sheet.Identity, rec))
			}
		}
	})

	sort.Slice(rows, func(i, j int) bool {
		if rows[i][2] != rows[j][2] {
			return rows[i][2] < rows[j][2]
		}
		return rows[i][0] < rows[j][0]
	})

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("export write failed: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export write failed: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export write failed: %w", err)
	}
	return nil
}

func exportRow(identity Identity, rec *DayRecord) []string {
	timeIn, timeOut := "", ""
	if rec.FirstIn != nil {
		timeIn = rec.FirstIn.Format("15:04:05")
	}
	if rec.LastOut != nil {
		timeOut = rec.LastOut.Format("15:04:05")
	}
	return []string{
		identity.Name,
		string(identity.ID),
		rec.Date.Format("2006-01-02"),
		rec.Weekday.String(),
		timeIn,
		timeOut,
		FormatMinutes(rec.Worked),
		string(rec.Punctuality),
		FormatMinutes(rec.LateBy),
		FormatMinutes(rec.OvertimeBy),
		DecimalHours(rec.Worked).String(),
	}
}

// DecimalHours converts a duration to hours with two decimal places,
// exact in decimal arithmetic.
func DecimalHours(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(int64(d / time.Second)).
		Div(decimal.NewFromInt(3600)).
		Round(2)
}

func inRange(day time.Time, from, to *time.Time) bool {
	if from != nil && day.Before(Midnight(*from)) {
		return false
	}
	if to != nil && day.After(Midnight(*to)) {
		return false
	}
	return true
}
