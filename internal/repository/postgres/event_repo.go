package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventregistry/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (name, category, event_date, start_time, end_time, location, capacity, description, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Name, e.Category, e.Date, e.StartTime, e.EndTime, e.Location,
		e.Capacity, e.Description, e.CreatedBy, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

const eventColumns = `id, name, category, event_date, start_time, end_time, location, capacity, description, created_by, updated_by, created_at, updated_at`

func scanEvent(row interface {
	Scan(dest ...any) error
}) (*domain.Event, error) {
	e := &domain.Event{}
	var endNull, descNull sql.NullString
	var updatedByNull sql.NullInt64
	err := row.Scan(
		&e.ID, &e.Name, &e.Category, &e.Date, &e.StartTime, &endNull, &e.Location,
		&e.Capacity, &descNull, &e.CreatedBy, &updatedByNull, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if endNull.Valid {
		e.EndTime = &endNull.String
	}
	if descNull.Valid {
		e.Description = &descNull.String
	}
	if updatedByNull.Valid {
		e.UpdatedBy = &updatedByNull.Int64
	}
	return e, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1
	`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET name = $2, category = $3, event_date = $4, start_time = $5, end_time = $6,
		    location = $7, capacity = $8, description = $9, updated_by = $10, updated_at = $11
		WHERE id = $1
	`
	result, err := r.DB.ExecContext(ctx, query,
		e.ID, e.Name, e.Category, e.Date, e.StartTime, e.EndTime,
		e.Location, e.Capacity, e.Description, e.UpdatedBy, e.UpdatedAt,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter) ([]*domain.EventWithCount, error) {
	where := []string{}
	args := []any{}
	n := 1
	if filter.Category != nil {
		where = append(where, fmt.Sprintf("e.category = $%d", n))
		args = append(args, *filter.Category)
		n++
	}
	if filter.Date != nil {
		// Match the whole calendar day, not the exact timestamp.
		d := *filter.Date
		dayStart := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
		where = append(where, fmt.Sprintf("e.event_date >= $%d AND e.event_date < $%d", n, n+1))
		args = append(args, dayStart, dayStart.AddDate(0, 0, 1))
		n += 2
	}

	query := `
		SELECT e.id, e.name, e.category, e.event_date, e.start_time, e.end_time, e.location, e.capacity, e.description, e.created_by, e.updated_by, e.created_at, e.updated_at,
		       COUNT(r.id) FILTER (WHERE r.cancelled = FALSE) AS active_count
		FROM events e
		LEFT JOIN registrations r ON r.event_id = e.id
	`
	if len(where) > 0 {
		query += "WHERE " + strings.Join(where, " AND ") + "\n"
	}
	query += `	GROUP BY e.id
		ORDER BY e.event_date ASC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.EventWithCount, 0)
	for rows.Next() {
		e := &domain.Event{}
		var endNull, descNull sql.NullString
		var updatedByNull sql.NullInt64
		var activeCount int
		err := rows.Scan(
			&e.ID, &e.Name, &e.Category, &e.Date, &e.StartTime, &endNull, &e.Location,
			&e.Capacity, &descNull, &e.CreatedBy, &updatedByNull, &e.CreatedAt, &e.UpdatedAt,
			&activeCount,
		)
		if err != nil {
			return nil, err
		}
		if endNull.Valid {
			e.EndTime = &endNull.String
		}
		if descNull.Valid {
			e.Description = &descNull.String
		}
		if updatedByNull.Valid {
			e.UpdatedBy = &updatedByNull.Int64
		}
		events = append(events, &domain.EventWithCount{Event: e, ActiveCount: activeCount})
	}
	return events, rows.Err()
}
