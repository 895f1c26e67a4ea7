package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventregistry/internal/domain"
)

type registrationService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	userRepo         domain.UserRepository
	mailer           domain.Mailer
	logger           *slog.Logger
	contextTimeout   time.Duration
}

// NewRegistrationService creates the registration lifecycle service. It is
// the sole writer of registration state.
func NewRegistrationService(
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	userRepo domain.UserRepository,
	mailer domain.Mailer,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RegistrationService {
	return &registrationService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		userRepo:         userRepo,
		mailer:           mailer,
		logger:           logger,
		contextTimeout:   timeout,
	}
}

func (s *registrationService) Register(ctx context.Context, eventID, participantID int64) (*domain.Registration, domain.Decision, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	participant, err := s.userRepo.GetByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Decision{}, domain.ErrNotFound
		}
		return nil, domain.Decision{}, fmt.Errorf("get participant: %w", err)
	}

	now := time.Now()
	// The repository runs the count-then-write sequence inside one
	// transaction holding a lock on the event row, so two attempts for the
	// last open seat serialize. The unique (event_id, participant_id) index
	// is the backstop; a violation comes back as an "already registered"
	// denial, not an error.
	reg, decision, err := s.registrationRepo.Register(ctx, eventID, participantID, now, domain.EvaluateRegistration)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Decision{}, domain.ErrNotFound
		}
		return nil, domain.Decision{}, fmt.Errorf("register: %w", err)
	}
	if !decision.Allowed() {
		return nil, decision, nil
	}

	s.sendConfirmation(ctx, participant, eventID)
	return reg, decision, nil
}

// sendConfirmation emails the participant after a successful registration.
// Best effort: failures are logged, never surfaced.
func (s *registrationService) sendConfirmation(ctx context.Context, participant *domain.User, eventID int64) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		s.logger.WarnContext(ctx, "confirmation email skipped", "event_id", eventID, "err", err)
		return
	}
	subject := fmt.Sprintf("Registration confirmed: %s", event.Name)
	text := fmt.Sprintf(
		"Hi %s,\n\nYou are registered for %s on %s at %s (%s).\n",
		participant.FirstName, event.Name, event.Date.Format("2006-01-02"), event.StartTime, event.Location,
	)
	if err := s.mailer.Send(participant.Email, subject, "", text); err != nil {
		s.logger.WarnContext(ctx, "confirmation email failed", "to", participant.Email, "err", err)
	}
}

func (s *registrationService) Cancel(ctx context.Context, eventID, participantID int64) (domain.Decision, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	existing, err := s.registrationRepo.GetByEventAndParticipant(ctx, eventID, participantID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.Decision{}, fmt.Errorf("get registration: %w", err)
	}

	now := time.Now()
	decision := domain.EvaluateCancellation(existing, now)
	if !decision.Allowed() {
		return decision, nil
	}

	if err := s.registrationRepo.Cancel(ctx, existing.ID, now); err != nil {
		return domain.Decision{}, fmt.Errorf("cancel registration: %w", err)
	}
	return decision, nil
}

func (s *registrationService) MarkAttended(ctx context.Context, actorID, registrationID int64) (domain.Decision, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Decision{}, domain.ErrForbidden
		}
		return domain.Decision{}, fmt.Errorf("get actor: %w", err)
	}
	if !actor.Role.HasRole(domain.RoleStaff, domain.RoleAdmin) {
		return domain.Decision{}, domain.ErrForbidden
	}

	existing, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.Decision{}, fmt.Errorf("get registration: %w", err)
	}

	decision := domain.EvaluateAttendanceMark(existing)
	if !decision.Allowed() {
		return decision, nil
	}
	if existing.Attended {
		// Idempotent: already attended, nothing to write.
		return decision, nil
	}

	if err := s.registrationRepo.MarkAttended(ctx, registrationID, time.Now()); err != nil {
		return domain.Decision{}, fmt.Errorf("mark attended: %w", err)
	}
	return decision, nil
}

func (s *registrationService) ListByEvent(ctx context.Context, actorID, eventID int64) ([]*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrForbidden
		}
		return nil, fmt.Errorf("get actor: %w", err)
	}
	if !actor.Role.HasRole(domain.RoleStaff, domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	regs, err := s.registrationRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	if regs == nil {
		regs = []*domain.Registration{}
	}
	return regs, nil
}
