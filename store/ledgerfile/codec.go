/*
codec.go - On-disk container format

PURPOSE:
  The container is one JSON document: a directory of named sheets,
  one per (identity, month). Only populated day rows are written; the
  month's empty pre-materialized days are resynthesized on load, so
  the file stays small and weekday/weekend tags never go stale.

  Times are RFC3339 (location preserved), durations are whole seconds.
  Any structural violation decodes to ErrCorruptContainer, which Open
  answers with quarantine-and-recreate.
*/
package ledgerfile

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/facegate/attendance-engine/ledger"
)

const containerVersion = 1

type containerDoc struct {
	Version int        `json:"version"`
	Sheets  []sheetDoc `json:"sheets"`
}

type sheetDoc struct {
	Identity ledger.Identity `json:"identity"`
	Month    string          `json:"month"`
	Summary  summaryDoc      `json:"summary"`
	Days     []dayRow        `json:"days"`
}

type summaryDoc struct {
	WorkingDays      int   `json:"working_days"`
	TotalWorkedSec   int64 `json:"total_worked_sec"`
	DaysLate         int   `json:"days_late"`
	TotalLateSec     int64 `json:"total_late_sec"`
	OvertimeDays     int   `json:"overtime_days"`
	TotalOvertimeSec int64 `json:"total_overtime_sec"`
}

type dayRow struct {
	Date        string `json:"date"`
	FirstIn     string `json:"first_in,omitempty"`
	LastOut     string `json:"last_out,omitempty"`
	WorkedSec   int64  `json:"worked_sec,omitempty"`
	Punctuality string `json:"punctuality,omitempty"`
	LateSec     int64  `json:"late_sec,omitempty"`
	OvertimeSec int64  `json:"overtime_sec,omitempty"`
}

// =============================================================================
// ENCODE
// =============================================================================

func encodeContainer(st *ledger.State) ([]byte, error) {
	doc := containerDoc{Version: containerVersion}
	for _, sheet := range st.Sheets {
		doc.Sheets = append(doc.Sheets, encodeSheet(sheet))
	}
	return json.MarshalIndent(doc, "", "  ")
}

func encodeSheet(sheet *ledger.MonthSheet) sheetDoc {
	doc := sheetDoc{
		Identity: sheet.Identity,
		Month:    sheet.Key.String(),
		Summary: summaryDoc{
			WorkingDays:      sheet.Summary.WorkingDays,
			TotalWorkedSec:   int64(sheet.Summary.TotalWorked / time.Second),
			DaysLate:         sheet.Summary.DaysLate,
			TotalLateSec:     int64(sheet.Summary.TotalLate / time.Second),
			OvertimeDays:     sheet.Summary.OvertimeDays,
			TotalOvertimeSec: int64(sheet.Summary.TotalOvertime / time.Second),
		},
	}
	for i := range sheet.Days {
		rec := &sheet.Days[i]
		if rec.FirstIn == nil {
			continue
		}
		row := dayRow{
			Date:        rec.Date.Format("2006-01-02"),
			FirstIn:     rec.FirstIn.Format(time.RFC3339),
			WorkedSec:   int64(rec.Worked / time.Second),
			Punctuality: string(rec.Punctuality),
			LateSec:     int64(rec.LateBy / time.Second),
			OvertimeSec: int64(rec.OvertimeBy / time.Second),
		}
		if rec.LastOut != nil {
			row.LastOut = rec.LastOut.Format(time.RFC3339)
		}
		doc.Days = append(doc.Days, row)
	}
	return doc
}

// =============================================================================
// DECODE
// =============================================================================

func decodeContainer(data []byte) (*ledger.State, error) {
	var doc containerDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrCorruptContainer, err)
	}
	if doc.Version != containerVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ledger.ErrCorruptContainer, doc.Version)
	}

	st := ledger.NewState()
	for _, sd := range doc.Sheets {
		sheet, err := decodeSheet(sd)
		if err != nil {
			return nil, err
		}
		key := ledger.NewSheetKey(sheet.Identity.ID, sheet.Key)
		if _, dup := st.Sheets[key]; dup {
			return nil, fmt.Errorf("%w: duplicate sheet %s", ledger.ErrCorruptContainer, key)
		}
		st.Sheets[key] = sheet
	}
	return st, nil
}

func decodeSheet(doc sheetDoc) (*ledger.MonthSheet, error) {
	if doc.Identity.ID == "" || doc.Identity.Name == "" {
		return nil, fmt.Errorf("%w: sheet without identity", ledger.ErrCorruptContainer)
	}
	key, err := ledger.ParseMonthKey(doc.Month)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrCorruptContainer, err)
	}

	sheet := ledger.NewMonthSheet(doc.Identity, key)
	sheet.Summary = ledger.MonthSummary{
		WorkingDays:   doc.Summary.WorkingDays,
		TotalWorked:   time.Duration(doc.Summary.TotalWorkedSec) * time.Second,
		DaysLate:      doc.Summary.DaysLate,
		TotalLate:     time.Duration(doc.Summary.TotalLateSec) * time.Second,
		OvertimeDays:  doc.Summary.OvertimeDays,
		TotalOvertime: time.Duration(doc.Summary.TotalOvertimeSec) * time.Second,
	}

	for _, row := range doc.Days {
		date, err := time.ParseInLocation("2006-01-02", row.Date, time.Local)
		if err != nil {
			return nil, fmt.Errorf("%w: bad date %q: %v", ledger.ErrCorruptContainer, row.Date, err)
		}
		rec := sheet.Day(date)
		if rec == nil {
			return nil, fmt.Errorf("%w: day %s outside sheet %s", ledger.ErrCorruptContainer, row.Date, doc.Month)
		}
		if row.FirstIn == "" {
			return nil, fmt.Errorf("%w: day row %s without first check-in", ledger.ErrCorruptContainer, row.Date)
		}
		in, err := time.Parse(time.RFC3339, row.FirstIn)
		if err != nil {
			return nil, fmt.Errorf("%w: bad first_in %q: %v", ledger.ErrCorruptContainer, row.FirstIn, err)
		}
		rec.FirstIn = &in
		if row.LastOut != "" {
			out, err := time.Parse(time.RFC3339, row.LastOut)
			if err != nil {
				return nil, fmt.Errorf("%w: bad last_out %q: %v", ledger.ErrCorruptContainer, row.LastOut, err)
			}
			rec.LastOut = &out
		}
		rec.Worked = time.Duration(row.WorkedSec) * time.Second
		rec.Punctuality = ledger.Punctuality(row.Punctuality)
		rec.LateBy = time.Duration(row.LateSec) * time.Second
		rec.OvertimeBy = time.Duration(row.OvertimeSec) * time.Second
	}
	return sheet, nil
}
