package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventregistry/internal/domain"
)

// historicalMonths is the trailing window for the historical report.
const historicalMonths = 6

type reportService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	userRepo         domain.UserRepository
	contextTimeout   time.Duration
	now              func() time.Time
}

// NewReportService creates a ReportService. Reports are read-only and derive
// entirely from event and registration state at query time.
func NewReportService(
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	userRepo domain.UserRepository,
	timeout time.Duration,
) domain.ReportService {
	return &reportService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		userRepo:         userRepo,
		contextTimeout:   timeout,
		now:              time.Now,
	}
}

func (s *reportService) requireAdmin(ctx context.Context, actorID int64) error {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrForbidden
		}
		return fmt.Errorf("get actor: %w", err)
	}
	if !actor.Role.HasRole(domain.RoleAdmin) {
		return domain.ErrForbidden
	}
	return nil
}

func (s *reportService) Summary(ctx context.Context, actorID int64) (*domain.SummaryReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	events, err := s.eventRepo.List(ctx, domain.EventFilter{})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	regs, err := s.registrationRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	participants, err := s.userRepo.CountByRole(ctx, domain.RoleParticipant)
	if err != nil {
		return nil, fmt.Errorf("count participants: %w", err)
	}

	now := s.now()
	upcoming, past := 0, 0
	for _, ec := range events {
		if ec.Event.HasPassed(now) {
			past++
		} else {
			upcoming++
		}
	}

	active := 0
	for _, r := range regs {
		if r.Active() {
			active++
		}
	}

	avg := 0.0
	if len(events) > 0 {
		avg = float64(len(regs)) / float64(len(events))
	}

	return &domain.SummaryReport{
		TotalEvents:    len(events),
		UpcomingEvents: upcoming,
		PastEvents:     past,
		RegistrationStats: domain.RegistrationStats{
			Total:     len(regs),
			Active:    active,
			Cancelled: len(regs) - active,
		},
		AvgRegistrationsPerEvent: avg,
		TotalParticipants:        participants,
		GeneratedAt:              now,
	}, nil
}

// attendanceFor reduces one event's registrations into its report row.
func attendanceFor(ec *domain.EventWithCount, regs []*domain.Registration) domain.EventAttendance {
	total, attended, cancelled := 0, 0, 0
	for _, r := range regs {
		if r.EventID != ec.Event.ID {
			continue
		}
		total++
		if r.Cancelled {
			cancelled++
		}
		if r.Attended {
			attended++
		}
	}

	rate := 0.0
	if denom := total - cancelled; denom > 0 {
		rate = float64(attended) / float64(denom)
	}
	capacityPct := 0.0
	if ec.Event.Capacity > 0 {
		capacityPct = float64(ec.ActiveCount) / float64(ec.Event.Capacity) * 100
	}

	return domain.EventAttendance{
		EventID:            ec.Event.ID,
		Name:               ec.Event.Name,
		Category:           ec.Event.Category,
		Date:               ec.Event.Date,
		TotalRegistrations: total,
		Attended:           attended,
		Cancelled:          cancelled,
		AttendanceRate:     rate,
		CapacityPercentage: capacityPct,
	}
}

func (s *reportService) Detailed(ctx context.Context, actorID int64, filter domain.EventFilter) (*domain.DetailedReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	regs, err := s.registrationRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	rows := make([]domain.EventAttendance, 0, len(events))
	for _, ec := range events {
		rows = append(rows, attendanceFor(ec, regs))
	}

	return &domain.DetailedReport{
		Events:      rows,
		GeneratedAt: s.now(),
	}, nil
}

func (s *reportService) Historical(ctx context.Context, actorID int64) (*domain.HistoricalReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	events, err := s.eventRepo.List(ctx, domain.EventFilter{})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	regs, err := s.registrationRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	regsByEvent := make(map[int64][]*domain.Registration)
	for _, r := range regs {
		regsByEvent[r.EventID] = append(regsByEvent[r.EventID], r)
	}

	now := s.now()
	windowStart := now.AddDate(0, -historicalMonths, 0)

	monthly := make(map[string]domain.MonthlyBucket)
	for _, ec := range events {
		date := ec.Event.Date
		if date.Before(windowStart) {
			continue
		}
		key := fmt.Sprintf("%d/%d", int(date.Month()), date.Year())
		bucket := monthly[key]
		bucket.EventCount++
		for _, r := range regsByEvent[ec.Event.ID] {
			bucket.RegistrationCount++
			if r.Cancelled {
				bucket.CancellationCount++
			}
		}
		monthly[key] = bucket
	}

	return &domain.HistoricalReport{
		MonthlyData: monthly,
		GeneratedAt: now,
	}, nil
}
