package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/djangocameroon/website-api/internal/domain"
)

// SettingsRepository persists the singleton notification settings record.
type SettingsRepository interface {
	Get(ctx context.Context) (*domain.NotificationSettings, error)
	Save(ctx context.Context, settings *domain.NotificationSettings) error
	// EnsureDefault creates the singleton row with defaults when missing.
	EnsureDefault(ctx context.Context) error
}

type settingsRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewSettingsRepository creates a new SQL-backed settings repository.
func NewSettingsRepository(db *sql.DB, log *slog.Logger) SettingsRepository {
	return &settingsRepository{
		db:  db,
		log: log,
	}
}

const settingsColumns = `
	send_welcome_email, send_welcome_sms,
	send_signup_email, send_signup_sms,
	send_new_event_email, send_new_event_sms,
	send_event_cancelled_email, send_event_cancelled_sms,
	send_event_reminder_email, send_event_reminder_sms,
	send_upcoming_digest_email, send_upcoming_digest_sms,
	send_registration_confirmation_email, send_registration_confirmation_sms,
	send_new_location_login_email, send_new_location_login_sms,
	updated_at
`

// Get loads the singleton settings row (id is always 1).
func (r *settingsRepository) Get(ctx context.Context) (*domain.NotificationSettings, error) {
	query := `
		SELECT ` + settingsColumns + `
		FROM notification_settings
		WHERE id = 1
	`

	var s domain.NotificationSettings
	if err := r.db.QueryRowContext(ctx, query).Scan(
		&s.SendWelcomeEmail, &s.SendWelcomeSMS,
		&s.SendSignupEmail, &s.SendSignupSMS,
		&s.SendNewEventEmail, &s.SendNewEventSMS,
		&s.SendEventCancelledEmail, &s.SendEventCancelledSMS,
		&s.SendEventReminderEmail, &s.SendEventReminderSMS,
		&s.SendUpcomingDigestEmail, &s.SendUpcomingDigestSMS,
		&s.SendRegistrationConfirmationEmail, &s.SendRegistrationConfirmationSMS,
		&s.SendNewLocationLoginEmail, &s.SendNewLocationLoginSMS,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		// not logged at error level: callers fall back to defaults and this
		// fires during startup before migrations
		if r.log != nil {
			r.log.Warn("notification settings unavailable", slog.Any("error", err))
		}
		return nil, fmt.Errorf("select notification settings: %w", err)
	}

	return &s, nil
}

// Save upserts the singleton row. Used by the administrative surface only.
func (r *settingsRepository) Save(ctx context.Context, settings *domain.NotificationSettings) error {
	const query = `
		INSERT INTO notification_settings (
			id,
			send_welcome_email, send_welcome_sms,
			send_signup_email, send_signup_sms,
			send_new_event_email, send_new_event_sms,
			send_event_cancelled_email, send_event_cancelled_sms,
			send_event_reminder_email, send_event_reminder_sms,
			send_upcoming_digest_email, send_upcoming_digest_sms,
			send_registration_confirmation_email, send_registration_confirmation_sms,
			send_new_location_login_email, send_new_location_login_sms,
			updated_at
		)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			send_welcome_email = EXCLUDED.send_welcome_email,
			send_welcome_sms = EXCLUDED.send_welcome_sms,
			send_signup_email = EXCLUDED.send_signup_email,
			send_signup_sms = EXCLUDED.send_signup_sms,
			send_new_event_email = EXCLUDED.send_new_event_email,
			send_new_event_sms = EXCLUDED.send_new_event_sms,
			send_event_cancelled_email = EXCLUDED.send_event_cancelled_email,
			send_event_cancelled_sms = EXCLUDED.send_event_cancelled_sms,
			send_event_reminder_email = EXCLUDED.send_event_reminder_email,
			send_event_reminder_sms = EXCLUDED.send_event_reminder_sms,
			send_upcoming_digest_email = EXCLUDED.send_upcoming_digest_email,
			send_upcoming_digest_sms = EXCLUDED.send_upcoming_digest_sms,
			send_registration_confirmation_email = EXCLUDED.send_registration_confirmation_email,
			send_registration_confirmation_sms = EXCLUDED.send_registration_confirmation_sms,
			send_new_location_login_email = EXCLUDED.send_new_location_login_email,
			send_new_location_login_sms = EXCLUDED.send_new_location_login_sms,
			updated_at = EXCLUDED.updated_at
	`

	settings.UpdatedAt = time.Now().UTC()

	if _, err := r.db.ExecContext(
		ctx,
		query,
		settings.SendWelcomeEmail, settings.SendWelcomeSMS,
		settings.SendSignupEmail, settings.SendSignupSMS,
		settings.SendNewEventEmail, settings.SendNewEventSMS,
		settings.SendEventCancelledEmail, settings.SendEventCancelledSMS,
		settings.SendEventReminderEmail, settings.SendEventReminderSMS,
		settings.SendUpcomingDigestEmail, settings.SendUpcomingDigestSMS,
		settings.SendRegistrationConfirmationEmail, settings.SendRegistrationConfirmationSMS,
		settings.SendNewLocationLoginEmail, settings.SendNewLocationLoginSMS,
		settings.UpdatedAt,
	); err != nil {
		if r.log != nil {
			r.log.Error("save notification settings failed", slog.Any("error", err))
		}
		return fmt.Errorf("upsert notification settings: %w", err)
	}

	return nil
}

// EnsureDefault lazily creates the row once; existing values are untouched.
func (r *settingsRepository) EnsureDefault(ctx context.Context) error {
	if _, err := r.Get(ctx); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	defaults := domain.DefaultSettings()
	return r.Save(ctx, &defaults)
}
