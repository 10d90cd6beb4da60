package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/djangocameroon/website-api/internal/domain"
)

// LoginRepository defines persistence operations for login records.
type LoginRepository interface {
	Create(ctx context.Context, record *domain.LoginRecord) error
	FindByID(ctx context.Context, id int64) (*domain.LoginRecord, error)
	// HasSuccessfulLoginFromIP reports whether the user has logged in
	// successfully from this IP before.
	HasSuccessfulLoginFromIP(ctx context.Context, userID int64, ip string) (bool, error)
	// HasSuccessfulLoginFromPlace reports whether the user has logged in
	// successfully from this country+city before.
	HasSuccessfulLoginFromPlace(ctx context.Context, userID int64, country, city string) (bool, error)
	// MarkNotificationSent flips notification_sent only when still false and
	// reports whether this call won the flip.
	MarkNotificationSent(ctx context.Context, id int64) (bool, error)
}

type loginRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewLoginRepository creates a new SQL-backed login record repository.
func NewLoginRepository(db *sql.DB, log *slog.Logger) LoginRepository {
	return &loginRepository{
		db:  db,
		log: log,
	}
}

const loginColumns = `id, user_id, ip_address, user_agent, device_type, browser, os, country, city, is_new_location, login_successful, notification_sent, created_at`

// Create persists a new login record.
func (r *loginRepository) Create(ctx context.Context, record *domain.LoginRecord) error {
	const query = `
		INSERT INTO login_history (user_id, ip_address, user_agent, device_type, browser, os, country, city, is_new_location, login_successful, notification_sent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	if err := r.db.QueryRowContext(
		ctx,
		query,
		record.UserID,
		record.IPAddress,
		record.UserAgent,
		record.DeviceType,
		record.Browser,
		record.OS,
		record.Country,
		record.City,
		record.IsNewLocation,
		record.LoginSuccessful,
		record.NotificationSent,
		record.CreatedAt,
	).Scan(&record.ID); err != nil {
		r.logError("create login record", record.UserID, err)
		return fmt.Errorf("insert login record: %w", err)
	}

	return nil
}

// FindByID retrieves a login record by primary key.
func (r *loginRepository) FindByID(ctx context.Context, id int64) (*domain.LoginRecord, error) {
	query := `
		SELECT ` + loginColumns + `
		FROM login_history
		WHERE id = $1
	`

	var record domain.LoginRecord
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID,
		&record.UserID,
		&record.IPAddress,
		&record.UserAgent,
		&record.DeviceType,
		&record.Browser,
		&record.OS,
		&record.Country,
		&record.City,
		&record.IsNewLocation,
		&record.LoginSuccessful,
		&record.NotificationSent,
		&record.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		r.logError("find login record by id", id, err)
		return nil, fmt.Errorf("select login record by id: %w", err)
	}

	return &record, nil
}

func (r *loginRepository) HasSuccessfulLoginFromIP(ctx context.Context, userID int64, ip string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM login_history
			WHERE user_id = $1 AND ip_address = $2 AND login_successful = TRUE
		)
	`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, ip).Scan(&exists); err != nil {
		r.logError("check login ip", userID, err)
		return false, fmt.Errorf("check prior login from ip: %w", err)
	}

	return exists, nil
}

func (r *loginRepository) HasSuccessfulLoginFromPlace(ctx context.Context, userID int64, country, city string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM login_history
			WHERE user_id = $1 AND country = $2 AND city = $3 AND login_successful = TRUE
		)
	`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, country, city).Scan(&exists); err != nil {
		r.logError("check login place", userID, err)
		return false, fmt.Errorf("check prior login from place: %w", err)
	}

	return exists, nil
}

func (r *loginRepository) MarkNotificationSent(ctx context.Context, id int64) (bool, error) {
	const query = `
		UPDATE login_history
		SET notification_sent = TRUE
		WHERE id = $1 AND notification_sent = FALSE
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		r.logError("mark notification sent", id, err)
		return false, fmt.Errorf("update notification_sent: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("notification_sent rows affected: %w", err)
	}

	return affected == 1, nil
}

func (r *loginRepository) logError(operation string, id int64, err error) {
	if r.log == nil || err == nil {
		return
	}

	r.log.Error("login repository operation failed",
		slog.String("operation", operation),
		slog.Int64("id", id),
		slog.Any("error", err),
	)
}
