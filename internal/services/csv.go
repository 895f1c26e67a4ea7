package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"eventregistry/internal/domain"
)

// CSV column headers. Order is fixed so exports are deterministic.
var (
	eventCSVHeader        = []string{"ID", "Name", "Category", "Date", "StartTime", "EndTime", "Location", "Capacity", "ActiveRegistrations"}
	registrationCSVHeader = []string{"ID", "EventID", "EventName", "ParticipantName", "ParticipantEmail", "RegisteredAt", "Status"}
	attendanceCSVHeader   = []string{"EventID", "EventName", "Date", "TotalRegistrations", "Attended", "Cancelled", "AttendanceRate"}
)

const csvDateLayout = "2006-01-02"

// writeCSV renders rows with encoding/csv, which applies RFC 4180 quoting:
// fields containing commas or quotes are wrapped in double quotes with inner
// quotes doubled.
func writeCSV(header []string, rows [][]string) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return b.String(), nil
}

func eventCSVRows(events []*domain.EventWithCount) [][]string {
	rows := make([][]string, 0, len(events))
	for _, ec := range events {
		e := ec.Event
		endTime := ""
		if e.EndTime != nil {
			endTime = *e.EndTime
		}
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.Name,
			string(e.Category),
			e.Date.Format(csvDateLayout),
			e.StartTime,
			endTime,
			e.Location,
			strconv.Itoa(e.Capacity),
			strconv.Itoa(ec.ActiveCount),
		})
	}
	return rows
}

func (s *reportService) ExportEventsCSV(ctx context.Context, actorID int64, filter domain.EventFilter) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireAdmin(ctx, actorID); err != nil {
		return "", err
	}
	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return "", fmt.Errorf("list events: %w", err)
	}
	return writeCSV(eventCSVHeader, eventCSVRows(events))
}

func (s *reportService) ExportWorkshopsCSV(ctx context.Context, actorID int64, filter domain.EventFilter) (string, error) {
	workshop := domain.CategoryWorkshop
	filter.Category = &workshop
	return s.ExportEventsCSV(ctx, actorID, filter)
}

// matchesFilter applies the event filter to a registration's event fields.
// Exports reduce over full collections, so filtering happens here rather than
// in SQL.
func matchesFilter(d *domain.RegistrationDetail, filter domain.EventFilter) bool {
	if filter.Category != nil && d.EventCategory != *filter.Category {
		return false
	}
	if filter.Date != nil {
		dayStart := time.Date(filter.Date.Year(), filter.Date.Month(), filter.Date.Day(), 0, 0, 0, 0, filter.Date.Location())
		dayEnd := dayStart.AddDate(0, 0, 1)
		if d.EventDate.Before(dayStart) || !d.EventDate.Before(dayEnd) {
			return false
		}
	}
	return true
}

func (s *reportService) ExportRegistrationsCSV(ctx context.Context, actorID int64, filter domain.EventFilter) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireAdmin(ctx, actorID); err != nil {
		return "", err
	}
	details, err := s.registrationRepo.ListDetails(ctx)
	if err != nil {
		return "", fmt.Errorf("list registrations: %w", err)
	}

	rows := make([][]string, 0, len(details))
	for _, d := range details {
		if !matchesFilter(d, filter) {
			continue
		}
		r := d.Registration
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			strconv.FormatInt(r.EventID, 10),
			d.EventName,
			d.ParticipantName,
			d.ParticipantEmail,
			r.RegisteredAt.Format(time.RFC3339),
			r.Status(),
		})
	}
	return writeCSV(registrationCSVHeader, rows)
}

func (s *reportService) ExportAttendanceCSV(ctx context.Context, actorID int64, filter domain.EventFilter) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireAdmin(ctx, actorID); err != nil {
		return "", err
	}
	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return "", fmt.Errorf("list events: %w", err)
	}
	regs, err := s.registrationRepo.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list registrations: %w", err)
	}

	rows := make([][]string, 0, len(events))
	for _, ec := range events {
		row := attendanceFor(ec, regs)
		rows = append(rows, []string{
			strconv.FormatInt(row.EventID, 10),
			row.Name,
			row.Date.Format(csvDateLayout),
			strconv.Itoa(row.TotalRegistrations),
			strconv.Itoa(row.Attended),
			strconv.Itoa(row.Cancelled),
			strconv.FormatFloat(row.AttendanceRate, 'f', 2, 64),
		})
	}
	return writeCSV(attendanceCSVHeader, rows)
}
