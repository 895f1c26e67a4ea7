package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventregistry/internal/domain"
)

func validEvent() *domain.Event {
	return &domain.Event{
		Name:      "Orbit Workshop",
		Category:  domain.CategoryWorkshop,
		Date:      time.Now().AddDate(0, 1, 0),
		StartTime: "10:00",
		Location:  "Hall A",
		Capacity:  30,
	}
}

func TestEventService_Create(t *testing.T) {
	ctx := context.Background()
	timeout := 5 * time.Second

	tests := []struct {
		name          string
		setup         func() (*fakeEventRepo, *fakeUserRepo)
		actorID       int64
		mutate        func(*domain.Event)
		wantForbidden bool
		wantInvalid   bool
		assert        func(t *testing.T, er *fakeEventRepo, event *domain.Event)
	}{
		{
			name: "staff creates event",
			setup: func() (*fakeEventRepo, *fakeUserRepo) {
				ur := newFakeUserRepo()
				ur.addUser(1, domain.RoleStaff)
				return newFakeEventRepo(), ur
			},
			actorID: 1,
			assert: func(t *testing.T, er *fakeEventRepo, event *domain.Event) {
				require.NotZero(t, event.ID)
				assert.Equal(t, int64(1), event.CreatedBy)
				assert.False(t, event.CreatedAt.IsZero())
				_, ok := er.byID[event.ID]
				require.True(t, ok)
			},
		},
		{
			name: "admin creates event",
			setup: func() (*fakeEventRepo, *fakeUserRepo) {
				ur := newFakeUserRepo()
				ur.addUser(1, domain.RoleAdmin)
				return newFakeEventRepo(), ur
			},
			actorID: 1,
			assert: func(t *testing.T, er *fakeEventRepo, event *domain.Event) {
				require.NotZero(t, event.ID)
			},
		},
		{
			name: "participant is forbidden",
			setup: func() (*fakeEventRepo, *fakeUserRepo) {
				ur := newFakeUserRepo()
				ur.addUser(1, domain.RoleParticipant)
				return newFakeEventRepo(), ur
			},
			actorID:       1,
			wantForbidden: true,
		},
		{
			name: "unknown actor is forbidden",
			setup: func() (*fakeEventRepo, *fakeUserRepo) {
				return newFakeEventRepo(), newFakeUserRepo()
			},
			actorID:       99,
			wantForbidden: true,
		},
		{
			name: "missing name",
			setup: func() (*fakeEventRepo, *fakeUserRepo) {
				ur := newFakeUserRepo()
				ur.addUser(1, domain.RoleStaff)
				return newFakeEventRepo(), ur
			},
			actorID:     1,
			mutate:      func(e *domain.Event) { e.Name = "  " },
			wantInvalid: true,
		},
		{
			name: "unknown category",
			setup: func() (*fakeEventRepo, *fakeUserRepo) {
				ur := newFakeUserRepo()
				ur.addUser(1, domain.RoleStaff)
				return newFakeEventRepo(), ur
			},
			actorID:     1,
			mutate:      func(e *domain.Event) { e.Category = "CONCERT" },
			wantInvalid: true,
		},
		{
			name: "zero capacity",
			setup: func() (*fakeEventRepo, *fakeUserRepo) {
				ur := newFakeUserRepo()
				ur.addUser(1, domain.RoleStaff)
				return newFakeEventRepo(), ur
			},
			actorID:     1,
			mutate:      func(e *domain.Event) { e.Capacity = 0 },
			wantInvalid: true,
		},
		{
			name: "negative capacity",
			setup: func() (*fakeEventRepo, *fakeUserRepo) {
				ur := newFakeUserRepo()
				ur.addUser(1, domain.RoleStaff)
				return newFakeEventRepo(), ur
			},
			actorID:     1,
			mutate:      func(e *domain.Event) { e.Capacity = -5 },
			wantInvalid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			er, ur := tt.setup()
			rr := newFakeRegistrationRepo(er)
			svc := NewEventService(er, rr, ur, timeout)
			event := validEvent()
			if tt.mutate != nil {
				tt.mutate(event)
			}
			err := svc.Create(ctx, tt.actorID, event)
			if tt.wantForbidden {
				require.True(t, errors.Is(err, domain.ErrForbidden))
				return
			}
			if tt.wantInvalid {
				require.True(t, errors.Is(err, domain.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			if tt.assert != nil {
				tt.assert(t, er, event)
			}
		})
	}
}

func TestEventService_Update(t *testing.T) {
	ctx := context.Background()
	timeout := 5 * time.Second

	newSetup := func() (*fakeEventRepo, *fakeUserRepo, *domain.Event) {
		er := newFakeEventRepo()
		created := er.addEvent(1, "Orbit Workshop", domain.CategoryWorkshop, time.Now().AddDate(0, 1, 0), 30)
		created.CreatedBy = 7
		created.CreatedAt = time.Now().Add(-24 * time.Hour)
		ur := newFakeUserRepo()
		ur.addUser(1, domain.RoleStaff)
		ur.addUser(2, domain.RoleParticipant)
		return er, ur, created
	}

	t.Run("staff updates and creator is preserved", func(t *testing.T) {
		er, ur, created := newSetup()
		svc := NewEventService(er, newFakeRegistrationRepo(er), ur, timeout)

		updated := validEvent()
		updated.ID = 1
		updated.Name = "Orbit Workshop v2"
		updated.Capacity = 50
		require.NoError(t, svc.Update(ctx, 1, updated))

		got := er.byID[1]
		assert.Equal(t, "Orbit Workshop v2", got.Name)
		assert.Equal(t, 50, got.Capacity)
		assert.Equal(t, created.CreatedBy, got.CreatedBy)
		assert.Equal(t, created.CreatedAt, got.CreatedAt)
		require.NotNil(t, got.UpdatedBy)
		assert.Equal(t, int64(1), *got.UpdatedBy)
	})

	t.Run("participant is forbidden", func(t *testing.T) {
		er, ur, _ := newSetup()
		svc := NewEventService(er, newFakeRegistrationRepo(er), ur, timeout)
		updated := validEvent()
		updated.ID = 1
		require.True(t, errors.Is(svc.Update(ctx, 2, updated), domain.ErrForbidden))
	})

	t.Run("event not found", func(t *testing.T) {
		er, ur, _ := newSetup()
		svc := NewEventService(er, newFakeRegistrationRepo(er), ur, timeout)
		updated := validEvent()
		updated.ID = 99
		require.True(t, errors.Is(svc.Update(ctx, 1, updated), domain.ErrNotFound))
	})

	t.Run("invalid fields rejected before any read", func(t *testing.T) {
		er, ur, _ := newSetup()
		svc := NewEventService(er, newFakeRegistrationRepo(er), ur, timeout)
		updated := validEvent()
		updated.ID = 1
		updated.Capacity = 0
		require.True(t, errors.Is(svc.Update(ctx, 1, updated), domain.ErrInvalidInput))
	})
}

func TestEventService_Delete(t *testing.T) {
	ctx := context.Background()
	timeout := 5 * time.Second

	newSetup := func() (*fakeEventRepo, *fakeRegistrationRepo, *fakeUserRepo) {
		er := newFakeEventRepo()
		er.addEvent(1, "Orbit Workshop", domain.CategoryWorkshop, time.Now().AddDate(0, 1, 0), 30)
		rr := newFakeRegistrationRepo(er)
		rr.addRow(&domain.Registration{EventID: 1, ParticipantID: 5})
		ur := newFakeUserRepo()
		ur.addUser(1, domain.RoleAdmin)
		ur.addUser(2, domain.RoleStaff)
		return er, rr, ur
	}

	t.Run("admin deletes and registrations cascade", func(t *testing.T) {
		er, rr, ur := newSetup()
		svc := NewEventService(er, rr, ur, timeout)
		require.NoError(t, svc.Delete(ctx, 1, 1))
		_, ok := er.byID[1]
		assert.False(t, ok)
		assert.Empty(t, rr.rows)
	})

	t.Run("staff is forbidden", func(t *testing.T) {
		er, rr, ur := newSetup()
		svc := NewEventService(er, rr, ur, timeout)
		require.True(t, errors.Is(svc.Delete(ctx, 2, 1), domain.ErrForbidden))
	})

	t.Run("event not found", func(t *testing.T) {
		er, rr, ur := newSetup()
		svc := NewEventService(er, rr, ur, timeout)
		require.True(t, errors.Is(svc.Delete(ctx, 1, 99), domain.ErrNotFound))
	})
}

func TestEventService_List(t *testing.T) {
	ctx := context.Background()
	timeout := 5 * time.Second
	day := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)

	er := newFakeEventRepo()
	er.addEvent(1, "Morning Workshop", domain.CategoryWorkshop, day.Add(9*time.Hour), 20)
	er.addEvent(2, "Evening Workshop", domain.CategoryWorkshop, day.Add(18*time.Hour), 20)
	er.addEvent(3, "Next-Day Training", domain.CategoryTraining, day.AddDate(0, 0, 1), 20)
	rr := newFakeRegistrationRepo(er)
	rr.addRow(&domain.Registration{EventID: 1, ParticipantID: 5})
	rr.addRow(&domain.Registration{EventID: 1, ParticipantID: 6, Cancelled: true})
	ur := newFakeUserRepo()
	svc := NewEventService(er, rr, ur, timeout)

	t.Run("no filter returns everything ordered by date", func(t *testing.T) {
		events, err := svc.List(ctx, domain.EventFilter{})
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, int64(1), events[0].Event.ID)
		assert.Equal(t, int64(3), events[2].Event.ID)
	})

	t.Run("active count excludes cancelled rows", func(t *testing.T) {
		events, err := svc.List(ctx, domain.EventFilter{})
		require.NoError(t, err)
		assert.Equal(t, 1, events[0].ActiveCount)
	})

	t.Run("category filter", func(t *testing.T) {
		cat := domain.CategoryTraining
		events, err := svc.List(ctx, domain.EventFilter{Category: &cat})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, int64(3), events[0].Event.ID)
	})

	t.Run("date filter matches the whole calendar day", func(t *testing.T) {
		events, err := svc.List(ctx, domain.EventFilter{Date: &day})
		require.NoError(t, err)
		require.Len(t, events, 2)
	})

	t.Run("no matches returns empty non-nil slice", func(t *testing.T) {
		cat := domain.CategoryPress
		events, err := svc.List(ctx, domain.EventFilter{Category: &cat})
		require.NoError(t, err)
		require.NotNil(t, events)
		require.Len(t, events, 0)
	})
}

func TestEventService_Get(t *testing.T) {
	ctx := context.Background()
	timeout := 5 * time.Second

	er := newFakeEventRepo()
	er.addEvent(1, "Orbit Workshop", domain.CategoryWorkshop, time.Now().AddDate(0, 1, 0), 30)
	rr := newFakeRegistrationRepo(er)
	rr.addRow(&domain.Registration{EventID: 1, ParticipantID: 5})
	rr.addRow(&domain.Registration{EventID: 1, ParticipantID: 6, Cancelled: true})
	svc := NewEventService(er, rr, newFakeUserRepo(), timeout)

	t.Run("detail includes all registrations and active count", func(t *testing.T) {
		detail, err := svc.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), detail.Event.ID)
		assert.Equal(t, 1, detail.ActiveCount)
		require.Len(t, detail.Registrations, 2)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.Get(ctx, 99)
		require.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestEventService_ListForParticipant(t *testing.T) {
	ctx := context.Background()
	timeout := 5 * time.Second

	er := newFakeEventRepo()
	er.addEvent(1, "Orbit Workshop", domain.CategoryWorkshop, time.Now().AddDate(0, 1, 0), 30)
	er.addEvent(2, "Press Briefing", domain.CategoryPress, time.Now().AddDate(0, 2, 0), 30)
	rr := newFakeRegistrationRepo(er)
	rr.addRow(&domain.Registration{EventID: 1, ParticipantID: 5})
	rr.addRow(&domain.Registration{EventID: 2, ParticipantID: 5, Cancelled: true})
	rr.addRow(&domain.Registration{EventID: 1, ParticipantID: 6})
	svc := NewEventService(er, rr, newFakeUserRepo(), timeout)

	t.Run("only active registrations yield events", func(t *testing.T) {
		events, err := svc.ListForParticipant(ctx, 5)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, int64(1), events[0].ID)
	})

	t.Run("no registrations yields empty non-nil slice", func(t *testing.T) {
		events, err := svc.ListForParticipant(ctx, 99)
		require.NoError(t, err)
		require.NotNil(t, events)
		require.Len(t, events, 0)
	})
}
