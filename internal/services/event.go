package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventregistry/internal/domain"
)

type eventService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	userRepo         domain.UserRepository
	contextTimeout   time.Duration
}

// NewEventService creates an EventService with the given repositories.
func NewEventService(
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	userRepo domain.UserRepository,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		userRepo:         userRepo,
		contextTimeout:   timeout,
	}
}

func (s *eventService) requireRole(ctx context.Context, actorID int64, allowed ...domain.Role) (*domain.User, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrForbidden
		}
		return nil, fmt.Errorf("get actor: %w", err)
	}
	if !actor.Role.HasRole(allowed...) {
		return nil, domain.ErrForbidden
	}
	return actor, nil
}

func validateEvent(event *domain.Event) error {
	if strings.TrimSpace(event.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if !event.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, event.Category)
	}
	if event.Date.IsZero() {
		return fmt.Errorf("%w: date is required", domain.ErrInvalidInput)
	}
	if event.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(event.Location) == "" {
		return fmt.Errorf("%w: location is required", domain.ErrInvalidInput)
	}
	return nil
}

func (s *eventService) Create(ctx context.Context, actorID int64, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	actor, err := s.requireRole(ctx, actorID, domain.RoleStaff, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if err := validateEvent(event); err != nil {
		return err
	}

	now := time.Now()
	event.CreatedBy = actor.ID
	event.CreatedAt = now
	event.UpdatedAt = now
	return s.eventRepo.Create(ctx, event)
}

func (s *eventService) Update(ctx context.Context, actorID int64, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	actor, err := s.requireRole(ctx, actorID, domain.RoleStaff, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if err := validateEvent(event); err != nil {
		return err
	}

	current, err := s.eventRepo.GetByID(ctx, event.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}

	event.CreatedBy = current.CreatedBy
	event.CreatedAt = current.CreatedAt
	event.UpdatedBy = &actor.ID
	event.UpdatedAt = time.Now()
	return s.eventRepo.Update(ctx, event)
}

func (s *eventService) Delete(ctx context.Context, actorID, eventID int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.requireRole(ctx, actorID, domain.RoleAdmin); err != nil {
		return err
	}
	// The store cascades the delete to registrations.
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) List(ctx context.Context, filter domain.EventFilter) ([]*domain.EventWithCount, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.EventWithCount{}
	}
	return events, nil
}

func (s *eventService) Get(ctx context.Context, eventID int64) (*domain.EventDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
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

	active := 0
	for _, r := range regs {
		if r.Active() {
			active++
		}
	}

	return &domain.EventDetail{
		Event:         event,
		ActiveCount:   active,
		Registrations: regs,
	}, nil
}

func (s *eventService) ListForParticipant(ctx context.Context, participantID int64) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	regs, err := s.registrationRepo.ListByParticipantID(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	// Fetch events one by one, caching by ID. Lists are small; optimize later
	// if this shows up in profiles.
	eventsByID := make(map[int64]*domain.Event)
	events := []*domain.Event{}
	for _, reg := range regs {
		if !reg.Active() {
			continue
		}
		ev, ok := eventsByID[reg.EventID]
		if !ok {
			ev, err = s.eventRepo.GetByID(ctx, reg.EventID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					continue
				}
				return nil, fmt.Errorf("get event for registration: %w", err)
			}
			eventsByID[reg.EventID] = ev
		}
		events = append(events, ev)
	}
	return events, nil
}
