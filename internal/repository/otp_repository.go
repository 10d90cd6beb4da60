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

// OTPRepository persists one-time verification codes keyed by user.
type OTPRepository interface {
	Create(ctx context.Context, code *domain.OTPCode) error
	// Find returns the newest matching code for the user, ErrNotFound when absent.
	Find(ctx context.Context, userID int64, code string) (*domain.OTPCode, error)
	Delete(ctx context.Context, id int64) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type otpRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewOTPRepository creates a new SQL-backed OTP repository.
func NewOTPRepository(db *sql.DB, log *slog.Logger) OTPRepository {
	return &otpRepository{
		db:  db,
		log: log,
	}
}

func (r *otpRepository) Create(ctx context.Context, code *domain.OTPCode) error {
	const query = `
		INSERT INTO otp_codes (user_id, code, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	if err := r.db.QueryRowContext(
		ctx,
		query,
		code.UserID,
		code.Code,
		code.ExpiresAt,
		code.CreatedAt,
	).Scan(&code.ID); err != nil {
		r.logError("create otp code", code.UserID, err)
		return fmt.Errorf("insert otp code: %w", err)
	}

	return nil
}

func (r *otpRepository) Find(ctx context.Context, userID int64, code string) (*domain.OTPCode, error) {
	const query = `
		SELECT id, user_id, code, expires_at, created_at
		FROM otp_codes
		WHERE user_id = $1 AND code = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	var otp domain.OTPCode
	if err := r.db.QueryRowContext(ctx, query, userID, code).Scan(
		&otp.ID,
		&otp.UserID,
		&otp.Code,
		&otp.ExpiresAt,
		&otp.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		r.logError("find otp code", userID, err)
		return nil, fmt.Errorf("select otp code: %w", err)
	}

	return &otp, nil
}

func (r *otpRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM otp_codes WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		r.logError("delete otp code", id, err)
		return fmt.Errorf("delete otp code: %w", err)
	}

	return nil
}

func (r *otpRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	const query = `DELETE FROM otp_codes WHERE expires_at < $1`

	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		r.logError("delete expired otp codes", 0, err)
		return 0, fmt.Errorf("delete expired otp codes: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expired otp rows affected: %w", err)
	}

	return affected, nil
}

func (r *otpRepository) logError(operation string, id int64, err error) {
	if r.log == nil || err == nil {
		return
	}

	r.log.Error("otp repository operation failed",
		slog.String("operation", operation),
		slog.Int64("id", id),
		slog.Any("error", err),
	)
}
