package domain

import (
	"context"
	"time"
)

// EventCategory classifies an event.
type EventCategory string

const (
	CategoryWorkshop       EventCategory = "WORKSHOP"
	CategoryTraining       EventCategory = "TRAINING"
	CategoryPublicOutreach EventCategory = "PUBLIC_OUTREACH"
	CategoryPress          EventCategory = "PRESS"
	CategoryLaunch         EventCategory = "LAUNCH"
)

// Valid reports whether c is a known category.
func (c EventCategory) Valid() bool {
	switch c {
	case CategoryWorkshop, CategoryTraining, CategoryPublicOutreach, CategoryPress, CategoryLaunch:
		return true
	}
	return false
}

// Event represents a scheduled event. Capacity is the ceiling for active
// (non-cancelled) registrations only.
// swagger:model Event
type Event struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Category    EventCategory `json:"category"`
	Date        time.Time     `json:"date"`
	StartTime   string        `json:"start_time"`
	EndTime     *string       `json:"end_time,omitempty"`
	Location    string        `json:"location"`
	Capacity    int           `json:"capacity"`
	Description *string       `json:"description,omitempty"`
	CreatedBy   int64         `json:"created_by"`
	UpdatedBy   *int64        `json:"updated_by,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is set by the repository on create.
func NewEvent(name string, category EventCategory, date time.Time, startTime, location string, capacity int, createdBy int64, createdAt time.Time) *Event {
	return &Event{
		Name:      name,
		Category:  category,
		Date:      date,
		StartTime: startTime,
		Location:  location,
		Capacity:  capacity,
		CreatedBy: createdBy,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// HasPassed reports whether the event date is before now.
func (e *Event) HasPassed(now time.Time) bool {
	return e.Date.Before(now)
}

// EventFilter narrows event reads. Date matches the whole calendar day in the
// date's location, not an exact timestamp.
type EventFilter struct {
	Category *EventCategory
	Date     *time.Time
}

// EventWithCount is an event annotated with its active registration count.
type EventWithCount struct {
	Event       *Event `json:"event"`
	ActiveCount int    `json:"active_count"`
}

// EventDetail bundles an event with all of its registrations (all states).
type EventDetail struct {
	Event         *Event          `json:"event"`
	ActiveCount   int             `json:"active_count"`
	Registrations []*Registration `json:"registrations"`
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id int64) (*Event, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id int64) error
	// List returns events matching the filter, ordered by event date
	// ascending, each with its active registration count.
	List(ctx context.Context, filter EventFilter) ([]*EventWithCount, error)
}

// EventService defines event management operations. Create and Update require
// STAFF or ADMIN; Delete requires ADMIN. Deletion cascades to registrations.
type EventService interface {
	Create(ctx context.Context, actorID int64, event *Event) error
	Update(ctx context.Context, actorID int64, event *Event) error
	Delete(ctx context.Context, actorID, eventID int64) error
	List(ctx context.Context, filter EventFilter) ([]*EventWithCount, error)
	Get(ctx context.Context, eventID int64) (*EventDetail, error)
	// ListForParticipant returns events the participant holds an active
	// registration for.
	ListForParticipant(ctx context.Context, participantID int64) ([]*Event, error)
}
