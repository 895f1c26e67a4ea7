package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"eventregistry/internal/domain"
)

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	byID   map[int64]*domain.User
	nextID int64
	err    error // if set, every method returns this error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[int64]*domain.User), nextID: 1}
}

func (f *fakeUserRepo) addUser(id int64, role domain.Role) *domain.User {
	u := &domain.User{
		ID:        id,
		Username:  "user",
		FirstName: "Test",
		LastName:  "User",
		Email:     "user@example.com",
		Role:      role,
	}
	f.byID[id] = u
	if id >= f.nextID {
		f.nextID = id + 1
	}
	return u
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	if f.err != nil {
		return f.err
	}
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, user.Email) {
			return domain.ErrDuplicateEmail
		}
	}
	user.ID = f.nextID
	f.nextID++
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.byID[id]; ok && u.DeletedAt == nil {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, email) && u.DeletedAt == nil {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) UpdateRole(ctx context.Context, id int64, role domain.Role) error {
	if f.err != nil {
		return f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Role = role
	return nil
}

func (f *fakeUserRepo) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	if f.err != nil {
		return f.err
	}
	u, ok := f.byID[id]
	if !ok || u.DeletedAt != nil {
		return domain.ErrNotFound
	}
	u.DeletedAt = &at
	return nil
}

func (f *fakeUserRepo) CountByRole(ctx context.Context, role domain.Role) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n := 0
	for _, u := range f.byID {
		if u.Role == role && u.DeletedAt == nil {
			n++
		}
	}
	return n, nil
}

// fakeEventRepo is an in-memory EventRepository for tests. Active counts for
// List come from the linked fakeRegistrationRepo when set, otherwise zero.
type fakeEventRepo struct {
	byID      map[int64]*domain.Event
	nextID    int64
	regs      *fakeRegistrationRepo
	err       error
	updateErr error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[int64]*domain.Event), nextID: 1}
}

func (f *fakeEventRepo) addEvent(id int64, name string, category domain.EventCategory, date time.Time, capacity int) *domain.Event {
	e := &domain.Event{ID: id, Name: name, Category: category, Date: date, StartTime: "10:00", Location: "Hall A", Capacity: capacity}
	f.byID[id] = e
	if id >= f.nextID {
		f.nextID = id + 1
	}
	return e
}

func (f *fakeEventRepo) Create(ctx context.Context, event *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	event.ID = f.nextID
	f.nextID++
	f.byID[event.ID] = event
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) Update(ctx context.Context, event *domain.Event) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.byID[event.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[event.ID] = event
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	if f.regs != nil {
		f.regs.deleteByEventID(id)
	}
	return nil
}

func (f *fakeEventRepo) List(ctx context.Context, filter domain.EventFilter) ([]*domain.EventWithCount, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.EventWithCount
	for _, e := range f.byID {
		if filter.Category != nil && e.Category != *filter.Category {
			continue
		}
		if filter.Date != nil {
			dayStart := time.Date(filter.Date.Year(), filter.Date.Month(), filter.Date.Day(), 0, 0, 0, 0, filter.Date.Location())
			dayEnd := dayStart.AddDate(0, 0, 1)
			if e.Date.Before(dayStart) || !e.Date.Before(dayEnd) {
				continue
			}
		}
		active := 0
		if f.regs != nil {
			active = f.regs.activeCount(e.ID)
		}
		out = append(out, &domain.EventWithCount{Event: e, ActiveCount: active})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Event.Date.Before(out[j].Event.Date) })
	return out, nil
}

// fakeRegistrationRepo is an in-memory RegistrationRepository. Register mirrors
// the real repository's sequence: load event, count active rows, load the
// existing pair row, evaluate, apply.
type fakeRegistrationRepo struct {
	rows    []*domain.Registration
	details []*domain.RegistrationDetail
	nextID  int64
	events  *fakeEventRepo
	err     error
}

func newFakeRegistrationRepo(events *fakeEventRepo) *fakeRegistrationRepo {
	f := &fakeRegistrationRepo{nextID: 1, events: events}
	if events != nil {
		events.regs = f
	}
	return f
}

func (f *fakeRegistrationRepo) addRow(r *domain.Registration) *domain.Registration {
	if r.ID == 0 {
		r.ID = f.nextID
	}
	if r.ID >= f.nextID {
		f.nextID = r.ID + 1
	}
	f.rows = append(f.rows, r)
	return r
}

func (f *fakeRegistrationRepo) activeCount(eventID int64) int {
	n := 0
	for _, r := range f.rows {
		if r.EventID == eventID && r.Active() {
			n++
		}
	}
	return n
}

func (f *fakeRegistrationRepo) deleteByEventID(eventID int64) {
	var kept []*domain.Registration
	for _, r := range f.rows {
		if r.EventID != eventID {
			kept = append(kept, r)
		}
	}
	f.rows = kept
}

func (f *fakeRegistrationRepo) find(eventID, participantID int64) *domain.Registration {
	for _, r := range f.rows {
		if r.EventID == eventID && r.ParticipantID == participantID {
			return r
		}
	}
	return nil
}

func (f *fakeRegistrationRepo) Register(ctx context.Context, eventID, participantID int64, now time.Time, evaluate domain.RegistrationEvaluator) (*domain.Registration, domain.Decision, error) {
	if f.err != nil {
		return nil, domain.Decision{}, f.err
	}
	event, err := f.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, domain.Decision{}, domain.ErrNotFound
	}
	existing := f.find(eventID, participantID)
	decision := evaluate(event, f.activeCount(eventID), existing, now)

	switch decision.Outcome {
	case domain.OutcomeAllowNew:
		reg := domain.NewRegistration(eventID, participantID, now)
		f.addRow(reg)
		return reg, decision, nil
	case domain.OutcomeAllowReactivate:
		existing.Cancelled = false
		existing.CancelledAt = nil
		existing.RegisteredAt = now
		return existing, decision, nil
	default:
		return nil, decision, nil
	}
}

func (f *fakeRegistrationRepo) GetByID(ctx context.Context, id int64) (*domain.Registration, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegistrationRepo) GetByEventAndParticipant(ctx context.Context, eventID, participantID int64) (*domain.Registration, error) {
	if f.err != nil {
		return nil, f.err
	}
	if r := f.find(eventID, participantID); r != nil {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegistrationRepo) Cancel(ctx context.Context, id int64, at time.Time) error {
	if f.err != nil {
		return f.err
	}
	for _, r := range f.rows {
		if r.ID == id && !r.Cancelled {
			r.Cancelled = true
			r.CancelledAt = &at
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeRegistrationRepo) MarkAttended(ctx context.Context, id int64, at time.Time) error {
	if f.err != nil {
		return f.err
	}
	for _, r := range f.rows {
		if r.ID == id && !r.Cancelled {
			r.Attended = true
			r.AttendedAt = &at
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeRegistrationRepo) ListByEventID(ctx context.Context, eventID int64) ([]*domain.Registration, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Registration
	for _, r := range f.rows {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRegistrationRepo) ListByParticipantID(ctx context.Context, participantID int64) ([]*domain.Registration, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Registration
	for _, r := range f.rows {
		if r.ParticipantID == participantID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRegistrationRepo) List(ctx context.Context) ([]*domain.Registration, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeRegistrationRepo) ListDetails(ctx context.Context) ([]*domain.RegistrationDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.details, nil
}

// fakeMailer records sends for assertions.
type fakeMailer struct {
	sent []fakeMailerSend
	err  error
}

type fakeMailerSend struct {
	to      string
	subject string
}

func (f *fakeMailer) Send(to, subject, html, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, fakeMailerSend{to: to, subject: subject})
	return nil
}
