package domain

import (
	"context"
	"time"
)

// RegistrationStats is the registration breakdown in the summary report.
type RegistrationStats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Cancelled int `json:"cancelled"`
}

// SummaryReport is the system-wide snapshot.
// swagger:model SummaryReport
type SummaryReport struct {
	TotalEvents       int               `json:"total_events"`
	UpcomingEvents    int               `json:"upcoming_events"`
	PastEvents        int               `json:"past_events"`
	RegistrationStats RegistrationStats `json:"registration_stats"`
	// AvgRegistrationsPerEvent is total registrations / total events, 0 when
	// there are no events.
	AvgRegistrationsPerEvent float64   `json:"avg_registrations_per_event"`
	TotalParticipants        int       `json:"total_participants"`
	GeneratedAt              time.Time `json:"generated_at"`
}

// EventAttendance is one event's row in the detailed report.
type EventAttendance struct {
	EventID            int64         `json:"event_id"`
	Name               string        `json:"name"`
	Category           EventCategory `json:"category"`
	Date               time.Time     `json:"date"`
	TotalRegistrations int           `json:"total_registrations"`
	Attended           int           `json:"attended"`
	Cancelled          int           `json:"cancelled"`
	// AttendanceRate is attended / (total - cancelled), 0 when the
	// denominator is 0.
	AttendanceRate     float64 `json:"attendance_rate"`
	CapacityPercentage float64 `json:"capacity_percentage"`
}

// DetailedReport lists per-event attendance figures.
// swagger:model DetailedReport
type DetailedReport struct {
	Events      []EventAttendance `json:"events"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// MonthlyBucket aggregates one calendar month in the historical report.
type MonthlyBucket struct {
	EventCount        int `json:"event_count"`
	RegistrationCount int `json:"registration_count"`
	CancellationCount int `json:"cancellation_count"`
}

// HistoricalReport buckets events and registrations by calendar month over a
// trailing window. Keys are "month/year", e.g. "7/2025".
// swagger:model HistoricalReport
type HistoricalReport struct {
	MonthlyData map[string]MonthlyBucket `json:"monthly_data"`
	GeneratedAt time.Time                `json:"generated_at"`
}

// ReportService computes reports and CSV projections. All outputs derive
// purely from event and registration state at query time. ADMIN only.
type ReportService interface {
	Summary(ctx context.Context, actorID int64) (*SummaryReport, error)
	Detailed(ctx context.Context, actorID int64, filter EventFilter) (*DetailedReport, error)
	Historical(ctx context.Context, actorID int64) (*HistoricalReport, error)
	ExportEventsCSV(ctx context.Context, actorID int64, filter EventFilter) (string, error)
	ExportRegistrationsCSV(ctx context.Context, actorID int64, filter EventFilter) (string, error)
	ExportWorkshopsCSV(ctx context.Context, actorID int64, filter EventFilter) (string, error)
	ExportAttendanceCSV(ctx context.Context, actorID int64, filter EventFilter) (string, error)
}
