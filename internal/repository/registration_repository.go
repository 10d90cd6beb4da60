package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/djangocameroon/website-api/internal/domain"
)

// RegistrationRepository defines persistence operations for event registrations.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *domain.EventRegistration) error
	FindByID(ctx context.Context, id int64) (*domain.EventRegistration, error)
	// ListPendingReminder returns registrations for the event with
	// status=registered and reminder_sent=false.
	ListPendingReminder(ctx context.Context, eventID int64) ([]domain.EventRegistration, error)
	// MarkReminderSent flags the given registrations in one bulk update.
	MarkReminderSent(ctx context.Context, ids []int64) error
	// MarkConfirmationSent flips confirmation_sent only when still false and
	// reports whether this call won the flip.
	MarkConfirmationSent(ctx context.Context, id int64) (bool, error)
	MarkAttended(ctx context.Context, id int64, at time.Time) error
	Cancel(ctx context.Context, id int64) error
	RefreshStats(ctx context.Context, eventID int64) (*domain.AttendanceStats, error)
}

type registrationRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewRegistrationRepository creates a new SQL-backed registration repository.
func NewRegistrationRepository(db *sql.DB, log *slog.Logger) RegistrationRepository {
	return &registrationRepository{
		db:  db,
		log: log,
	}
}

const registrationColumns = `id, event_id, user_id, registration_code, status, checked_in, check_in_time, reminder_sent, confirmation_sent, notes, created_at`

// Create persists a new registration, generating a code when absent.
func (r *registrationRepository) Create(ctx context.Context, reg *domain.EventRegistration) error {
	if reg.RegistrationCode == "" {
		reg.RegistrationCode = domain.NewRegistrationCode()
	}
	if reg.Status == "" {
		reg.Status = domain.StatusRegistered
	}

	const query = `
		INSERT INTO event_registrations (event_id, user_id, registration_code, status, checked_in, reminder_sent, confirmation_sent, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	if err := r.db.QueryRowContext(
		ctx,
		query,
		reg.EventID,
		reg.UserID,
		reg.RegistrationCode,
		reg.Status,
		reg.CheckedIn,
		reg.ReminderSent,
		reg.ConfirmationSent,
		reg.Notes,
		reg.CreatedAt,
	).Scan(&reg.ID); err != nil {
		r.logError("create registration", 0, err)
		return fmt.Errorf("insert registration: %w", err)
	}

	return nil
}

// FindByID retrieves a registration by primary key.
func (r *registrationRepository) FindByID(ctx context.Context, id int64) (*domain.EventRegistration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM event_registrations
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)

	reg, err := scanRegistration(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		r.logError("find registration by id", id, err)
		return nil, fmt.Errorf("select registration by id: %w", err)
	}

	return reg, nil
}

func (r *registrationRepository) ListPendingReminder(ctx context.Context, eventID int64) ([]domain.EventRegistration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM event_registrations
		WHERE event_id = $1 AND status = $2 AND reminder_sent = FALSE
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, eventID, domain.StatusRegistered)
	if err != nil {
		r.logError("list pending reminders", eventID, err)
		return nil, fmt.Errorf("select pending reminder registrations: %w", err)
	}
	defer rows.Close()

	var regs []domain.EventRegistration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, *reg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}

	return regs, nil
}

func (r *registrationRepository) MarkReminderSent(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	const query = `
		UPDATE event_registrations
		SET reminder_sent = TRUE
		WHERE id = ANY($1)
	`

	if _, err := r.db.ExecContext(ctx, query, pq.Array(ids)); err != nil {
		r.logError("mark reminder sent", 0, err)
		return fmt.Errorf("bulk update reminder_sent: %w", err)
	}

	return nil
}

func (r *registrationRepository) MarkConfirmationSent(ctx context.Context, id int64) (bool, error) {
	const query = `
		UPDATE event_registrations
		SET confirmation_sent = TRUE
		WHERE id = $1 AND confirmation_sent = FALSE
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		r.logError("mark confirmation sent", id, err)
		return false, fmt.Errorf("update confirmation_sent: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("confirmation_sent rows affected: %w", err)
	}

	return affected == 1, nil
}

// MarkAttended records a check-in.
func (r *registrationRepository) MarkAttended(ctx context.Context, id int64, at time.Time) error {
	const query = `
		UPDATE event_registrations
		SET status = $2, checked_in = TRUE, check_in_time = $3
		WHERE id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, id, domain.StatusAttended, at); err != nil {
		r.logError("mark attended", id, err)
		return fmt.Errorf("update registration to attended: %w", err)
	}

	return nil
}

// Cancel marks the registration as cancelled by the user.
func (r *registrationRepository) Cancel(ctx context.Context, id int64) error {
	const query = `
		UPDATE event_registrations
		SET status = $2
		WHERE id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, id, domain.StatusCancelled); err != nil {
		r.logError("cancel registration", id, err)
		return fmt.Errorf("update registration to cancelled: %w", err)
	}

	return nil
}

// RefreshStats recomputes and upserts attendance counters for the event.
func (r *registrationRepository) RefreshStats(ctx context.Context, eventID int64) (*domain.AttendanceStats, error) {
	const query = `
		INSERT INTO event_attendance_stats (event_id, total_registered, total_attended, total_cancelled, total_no_show)
		SELECT $1,
		       COUNT(*) FILTER (WHERE status = 'registered'),
		       COUNT(*) FILTER (WHERE status = 'attended'),
		       COUNT(*) FILTER (WHERE status = 'cancelled'),
		       COUNT(*) FILTER (WHERE status = 'no_show')
		FROM event_registrations
		WHERE event_id = $1
		ON CONFLICT (event_id) DO UPDATE
		SET total_registered = EXCLUDED.total_registered,
		    total_attended = EXCLUDED.total_attended,
		    total_cancelled = EXCLUDED.total_cancelled,
		    total_no_show = EXCLUDED.total_no_show
		RETURNING event_id, total_registered, total_attended, total_cancelled, total_no_show
	`

	var stats domain.AttendanceStats
	if err := r.db.QueryRowContext(ctx, query, eventID).Scan(
		&stats.EventID,
		&stats.TotalRegistered,
		&stats.TotalAttended,
		&stats.TotalCancelled,
		&stats.TotalNoShow,
	); err != nil {
		r.logError("refresh stats", eventID, err)
		return nil, fmt.Errorf("refresh attendance stats: %w", err)
	}

	return &stats, nil
}

func scanRegistration(row rowScanner) (*domain.EventRegistration, error) {
	var (
		reg         domain.EventRegistration
		checkInTime sql.NullTime
	)
	if err := row.Scan(
		&reg.ID,
		&reg.EventID,
		&reg.UserID,
		&reg.RegistrationCode,
		&reg.Status,
		&reg.CheckedIn,
		&checkInTime,
		&reg.ReminderSent,
		&reg.ConfirmationSent,
		&reg.Notes,
		&reg.CreatedAt,
	); err != nil {
		return nil, err
	}

	if checkInTime.Valid {
		t := checkInTime.Time
		reg.CheckInTime = &t
	}

	return &reg, nil
}

func (r *registrationRepository) logError(operation string, id int64, err error) {
	if r.log == nil || err == nil {
		return
	}

	r.log.Error("registration repository operation failed",
		slog.String("operation", operation),
		slog.Int64("id", id),
		slog.Any("error", err),
	)
}
