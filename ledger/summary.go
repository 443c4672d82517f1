/*
summary.go - Monthly aggregation

PURPOSE:
  Recomputes the cached per-month summary block from a sheet's day
  records. The summary is a materialized cache, never the source of
  truth: Recompute is a pure function of the DayRecords and running it
  any number of times on unchanged records yields identical output.

WHAT COUNTS:
  - Working day:  any day with FirstIn set
  - Late day:     punctuality LATE (first check-in after the cutoff)
  - Overtime day: a recorded OvertimeBy > 0
  - Total worked: sum of completed days' Worked
*/
package ledger

// Recompute scans every day record in the sheet and rebuilds the
// summary block. The sheet itself is not modified; callers decide
// whether to overwrite sheet.Summary with the result.
func Recompute(sheet *MonthSheet) MonthSummary {
	var sum MonthSummary
	for i := range sheet.Days {
		rec := &sheet.Days[i]
		if rec.FirstIn == nil {
			continue
		}
		sum.WorkingDays++
		sum.TotalWorked += rec.Worked
		if rec.Punctuality == Late {
			sum.DaysLate++
			sum.TotalLate += rec.LateBy
		}
		if rec.OvertimeBy > 0 {
			sum.OvertimeDays++
			sum.TotalOvertime += rec.OvertimeBy
		}
	}
	return sum
}
