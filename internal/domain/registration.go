package domain

import (
	"context"
	"time"
)

// Registration links one participant to one event. At most one row exists per
// (event, participant) pair; Cancelled and Attended distinguish history rather
// than allowing duplicate rows. A registration with Cancelled == false is
// "active" and counts against the event's capacity.
// swagger:model Registration
type Registration struct {
	ID            int64      `json:"id"`
	EventID       int64      `json:"event_id"`
	ParticipantID int64      `json:"participant_id"`
	RegisteredAt  time.Time  `json:"registered_at"`
	Cancelled     bool       `json:"cancelled"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	Attended      bool       `json:"attended"`
	AttendedAt    *time.Time `json:"attended_at,omitempty"`
}

// NewRegistration returns a new active Registration. ID is set by the repository on create.
func NewRegistration(eventID, participantID int64, registeredAt time.Time) *Registration {
	return &Registration{
		EventID:       eventID,
		ParticipantID: participantID,
		RegisteredAt:  registeredAt,
	}
}

// Active reports whether the registration counts against capacity.
func (r *Registration) Active() bool {
	return !r.Cancelled
}

// Status returns the export status label. Cancellation is the terminal
// user-visible state, so it takes precedence over attendance.
func (r *Registration) Status() string {
	switch {
	case r.Cancelled:
		return "Cancelled"
	case r.Attended:
		return "Attended"
	default:
		return "Registered"
	}
}

// RegistrationDetail is a registration joined with event and participant
// display fields for listings and exports.
type RegistrationDetail struct {
	Registration     *Registration `json:"registration"`
	EventName        string        `json:"event_name"`
	EventDate        time.Time     `json:"event_date"`
	EventCategory    EventCategory `json:"event_category"`
	ParticipantName  string        `json:"participant_name"`
	ParticipantEmail string        `json:"participant_email"`
}

// RegistrationEvaluator decides the outcome of a registration attempt given
// the state read inside the repository's transaction. It must be pure.
type RegistrationEvaluator func(event *Event, activeCount int, existing *Registration, now time.Time) Decision

// RegistrationRepository defines storage operations for registrations. The
// Lifecycle Service is the sole caller of its mutating methods.
type RegistrationRepository interface {
	// Register runs the registration attempt atomically: it locks the event
	// row, counts active registrations, loads any existing row for the pair,
	// calls evaluate, and applies the decision (insert or reactivate). A
	// unique-constraint violation racing with a concurrent insert is
	// translated into a DecisionDeny(ReasonAlreadyRegistered) once.
	// Returns ErrNotFound if the event does not exist.
	Register(ctx context.Context, eventID, participantID int64, now time.Time, evaluate RegistrationEvaluator) (*Registration, Decision, error)
	GetByID(ctx context.Context, id int64) (*Registration, error)
	// GetByEventAndParticipant returns the row for the pair in any state, or
	// ErrNotFound.
	GetByEventAndParticipant(ctx context.Context, eventID, participantID int64) (*Registration, error)
	Cancel(ctx context.Context, id int64, at time.Time) error
	MarkAttended(ctx context.Context, id int64, at time.Time) error
	ListByEventID(ctx context.Context, eventID int64) ([]*Registration, error)
	ListByParticipantID(ctx context.Context, participantID int64) ([]*Registration, error)
	List(ctx context.Context) ([]*Registration, error)
	// ListDetails returns all registrations joined with event and participant
	// display fields, newest first.
	ListDetails(ctx context.Context) ([]*RegistrationDetail, error)
}

// RegistrationService is the lifecycle orchestrator. It is the only writer of
// registration state.
type RegistrationService interface {
	// Register attempts to register the participant for the event. A denial
	// is returned in the Decision, not as an error.
	Register(ctx context.Context, eventID, participantID int64) (*Registration, Decision, error)
	// Cancel cancels the participant's active registration. Allowed even
	// after the event date has passed.
	Cancel(ctx context.Context, eventID, participantID int64) (Decision, error)
	// MarkAttended records attendance on a registration. STAFF or ADMIN only;
	// idempotent for already-attended registrations.
	MarkAttended(ctx context.Context, actorID, registrationID int64) (Decision, error)
	// ListByEvent returns an event's registrations in all states. STAFF or
	// ADMIN only.
	ListByEvent(ctx context.Context, actorID, eventID int64) ([]*Registration, error)
}
