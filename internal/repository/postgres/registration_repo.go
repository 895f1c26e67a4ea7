package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"eventregistry/internal/domain"
)

// uniqueViolation is the postgres error code for a unique constraint violation.
const uniqueViolation = "23505"

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

// Register runs the registration attempt in one transaction.
//
// The naive read-count-then-insert sequence is unsafe under concurrency: two
// attempts for the last open seat can both observe a free seat before either
// commits. Locking the event row with SELECT ... FOR UPDATE serializes
// attempts per event, and the unique (event_id, participant_id) index is the
// backstop: if a concurrent insert wins the race anyway, the violation is
// translated into an "already registered" denial exactly once.
func (r *registrationRepository) Register(ctx context.Context, eventID, participantID int64, now time.Time, evaluate domain.RegistrationEvaluator) (*domain.Registration, domain.Decision, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.Decision{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	event, err := lockEvent(ctx, tx, eventID)
	if err != nil {
		return nil, domain.Decision{}, err
	}

	var activeCount int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND cancelled = FALSE`,
		eventID,
	).Scan(&activeCount)
	if err != nil {
		return nil, domain.Decision{}, fmt.Errorf("count active registrations: %w", err)
	}

	existing, err := getByEventAndParticipantTx(ctx, tx, eventID, participantID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Decision{}, err
	}

	decision := evaluate(event, activeCount, existing, now)
	switch decision.Outcome {
	case domain.OutcomeAllowNew:
		reg := domain.NewRegistration(eventID, participantID, now)
		err = tx.QueryRowContext(ctx,
			`INSERT INTO registrations (event_id, participant_id, registered_at)
			 VALUES ($1, $2, $3)
			 RETURNING id`,
			eventID, participantID, now,
		).Scan(&reg.ID)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
				// Lost a race with a concurrent insert for the same pair.
				return nil, domain.DecisionDeny(domain.ReasonAlreadyRegistered), nil
			}
			return nil, domain.Decision{}, fmt.Errorf("insert registration: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, domain.Decision{}, fmt.Errorf("commit: %w", err)
		}
		return reg, decision, nil

	case domain.OutcomeAllowReactivate:
		// The registration date is refreshed to the reactivation moment.
		_, err = tx.ExecContext(ctx,
			`UPDATE registrations
			 SET cancelled = FALSE, cancelled_at = NULL, registered_at = $2
			 WHERE id = $1`,
			existing.ID, now,
		)
		if err != nil {
			return nil, domain.Decision{}, fmt.Errorf("reactivate registration: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, domain.Decision{}, fmt.Errorf("commit: %w", err)
		}
		reg := *existing
		reg.Cancelled = false
		reg.CancelledAt = nil
		reg.RegisteredAt = now
		return &reg, decision, nil

	default:
		return nil, decision, nil
	}
}

func lockEvent(ctx context.Context, tx *sql.Tx, eventID int64) (*domain.Event, error) {
	query := `
		SELECT id, name, category, event_date, start_time, end_time, location, capacity, description, created_by, updated_by, created_at, updated_at
		FROM events
		WHERE id = $1
		FOR UPDATE
	`
	e := &domain.Event{}
	var endNull, descNull sql.NullString
	var updatedByNull sql.NullInt64
	err := tx.QueryRowContext(ctx, query, eventID).Scan(
		&e.ID, &e.Name, &e.Category, &e.Date, &e.StartTime, &endNull, &e.Location,
		&e.Capacity, &descNull, &e.CreatedBy, &updatedByNull, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("lock event row: %w", err)
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

const registrationColumns = `id, event_id, participant_id, registered_at, cancelled, cancelled_at, attended, attended_at`

func scanRegistration(row interface {
	Scan(dest ...any) error
}) (*domain.Registration, error) {
	reg := &domain.Registration{}
	var cancelledAt, attendedAt sql.NullTime
	err := row.Scan(
		&reg.ID, &reg.EventID, &reg.ParticipantID, &reg.RegisteredAt,
		&reg.Cancelled, &cancelledAt, &reg.Attended, &attendedAt,
	)
	if err != nil {
		return nil, err
	}
	if cancelledAt.Valid {
		reg.CancelledAt = &cancelledAt.Time
	}
	if attendedAt.Valid {
		reg.AttendedAt = &attendedAt.Time
	}
	return reg, nil
}

func getByEventAndParticipantTx(ctx context.Context, tx *sql.Tx, eventID, participantID int64) (*domain.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE event_id = $1 AND participant_id = $2
	`
	reg, err := scanRegistration(tx.QueryRowContext(ctx, query, eventID, participantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) GetByID(ctx context.Context, id int64) (*domain.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE id = $1
	`
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) GetByEventAndParticipant(ctx context.Context, eventID, participantID int64) (*domain.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE event_id = $1 AND participant_id = $2
	`
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, eventID, participantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) Cancel(ctx context.Context, id int64, at time.Time) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE registrations
		 SET cancelled = TRUE, cancelled_at = $2
		 WHERE id = $1 AND cancelled = FALSE`,
		id, at,
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

func (r *registrationRepository) MarkAttended(ctx context.Context, id int64, at time.Time) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE registrations
		 SET attended = TRUE, attended_at = $2
		 WHERE id = $1 AND cancelled = FALSE`,
		id, at,
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

func (r *registrationRepository) ListByEventID(ctx context.Context, eventID int64) ([]*domain.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE event_id = $1
		ORDER BY registered_at DESC
	`
	return r.queryRegistrations(ctx, query, eventID)
}

func (r *registrationRepository) ListByParticipantID(ctx context.Context, participantID int64) ([]*domain.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE participant_id = $1
		ORDER BY registered_at DESC
	`
	return r.queryRegistrations(ctx, query, participantID)
}

func (r *registrationRepository) List(ctx context.Context) ([]*domain.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		ORDER BY registered_at DESC
	`
	return r.queryRegistrations(ctx, query)
}

func (r *registrationRepository) queryRegistrations(ctx context.Context, query string, args ...any) ([]*domain.Registration, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]*domain.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *registrationRepository) ListDetails(ctx context.Context) ([]*domain.RegistrationDetail, error) {
	query := `
		SELECT r.id, r.event_id, r.participant_id, r.registered_at, r.cancelled, r.cancelled_at, r.attended, r.attended_at,
		       e.name, e.event_date, e.category,
		       u.first_name, u.last_name, u.email
		FROM registrations r
		JOIN events e ON e.id = r.event_id
		JOIN users u ON u.id = r.participant_id
		ORDER BY r.registered_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]*domain.RegistrationDetail, 0)
	for rows.Next() {
		reg := &domain.Registration{}
		var cancelledAt, attendedAt sql.NullTime
		var firstName, lastName string
		d := &domain.RegistrationDetail{Registration: reg}
		err := rows.Scan(
			&reg.ID, &reg.EventID, &reg.ParticipantID, &reg.RegisteredAt,
			&reg.Cancelled, &cancelledAt, &reg.Attended, &attendedAt,
			&d.EventName, &d.EventDate, &d.EventCategory,
			&firstName, &lastName, &d.ParticipantEmail,
		)
		if err != nil {
			return nil, err
		}
		if cancelledAt.Valid {
			reg.CancelledAt = &cancelledAt.Time
		}
		if attendedAt.Valid {
			reg.AttendedAt = &attendedAt.Time
		}
		d.ParticipantName = firstName + " " + lastName
		details = append(details, d)
	}
	return details, rows.Err()
}
