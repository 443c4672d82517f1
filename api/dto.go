/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types
  decouple the internal day-record model from the external contract:
  durations go out as human-readable strings plus decimal hours,
  timestamps as RFC3339.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data
  carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - ledger/tracker.go: Source domain types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/facegate/attendance-engine/ledger"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// IdentityDTO represents an enrolled person.
type IdentityDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ObserveRequest reports a sighting of a person, typically from a
// recognition gate. At is optional and defaults to the server clock.
type ObserveRequest struct {
	Name string `json:"name"`
	At   string `json:"at,omitempty"`
}

// EventRequest records an explicit attendance event.
type EventRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	At   string `json:"at,omitempty"`
}

// OutcomeDTO is the result of an observation or explicit event.
type OutcomeDTO struct {
	Identity IdentityDTO `json:"identity"`
	Outcome  string      `json:"outcome"`
	At       string      `json:"at"`
}

// StatusDTO is one person's current in/out state.
type StatusDTO struct {
	Identity    IdentityDTO     `json:"identity"`
	Presence    string          `json:"presence"`
	FirstIn     *string         `json:"first_in,omitempty"`
	LastOut     *string         `json:"last_out,omitempty"`
	Worked      string          `json:"worked"`
	Hours       decimal.Decimal `json:"hours"`
	Punctuality string          `json:"punctuality,omitempty"`
	LateBy      string          `json:"late_by,omitempty"`
	OvertimeBy  string          `json:"overtime_by,omitempty"`
	InOvertime  bool            `json:"in_overtime"`
}

// MonthReportDTO is one person's aggregate for a month.
type MonthReportDTO struct {
	Identity      IdentityDTO     `json:"identity"`
	Month         string          `json:"month"`
	WorkingDays   int             `json:"working_days"`
	TotalWorked   string          `json:"total_worked"`
	TotalHours    decimal.Decimal `json:"total_hours"`
	DaysLate      int             `json:"days_late"`
	TotalLate     string          `json:"total_late"`
	OvertimeDays  int             `json:"overtime_days"`
	TotalOvertime string          `json:"total_overtime"`
}

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toIdentityDTO(id ledger.Identity) IdentityDTO {
	return IdentityDTO{ID: string(id.ID), Name: id.Name}
}

func toStatusDTO(s ledger.Status) StatusDTO {
	dto := StatusDTO{
		Identity:    toIdentityDTO(s.Identity),
		Presence:    string(s.Presence),
		Worked:      ledger.FormatMinutes(s.Worked),
		Hours:       ledger.DecimalHours(s.Worked),
		Punctuality: string(s.Punctuality),
		InOvertime:  s.InOvertime,
	}
	if s.FirstIn != nil {
		dto.FirstIn = strPtr(s.FirstIn.Format(time.RFC3339))
	}
	if s.LastOut != nil {
		dto.LastOut = strPtr(s.LastOut.Format(time.RFC3339))
	}
	if s.LateBy > 0 {
		dto.LateBy = ledger.FormatMinutes(s.LateBy)
	}
	if s.OvertimeBy > 0 {
		dto.OvertimeBy = ledger.FormatMinutes(s.OvertimeBy)
	}
	return dto
}

func toMonthReportDTO(r ledger.MonthReport) MonthReportDTO {
	return MonthReportDTO{
		Identity:      toIdentityDTO(r.Identity),
		Month:         r.Month.String(),
		WorkingDays:   r.Summary.WorkingDays,
		TotalWorked:   ledger.FormatMinutes(r.Summary.TotalWorked),
		TotalHours:    ledger.DecimalHours(r.Summary.TotalWorked),
		DaysLate:      r.Summary.DaysLate,
		TotalLate:     ledger.FormatMinutes(r.Summary.TotalLate),
		OvertimeDays:  r.Summary.OvertimeDays,
		TotalOvertime: ledger.FormatMinutes(r.Summary.TotalOvertime),
	}
}

func strPtr(s string) *string {
	return &s
}
