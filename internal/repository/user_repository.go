// Package repository contains the SQL persistence layer for domain records.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/djangocameroon/website-api/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	ListActive(ctx context.Context) ([]domain.User, error)
	ListByIDs(ctx context.Context, ids []int64) ([]domain.User, error)
	ListRegisteredForEvent(ctx context.Context, eventID int64) ([]domain.User, error)
}

type userRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewUserRepository creates a new SQL-backed user repository.
func NewUserRepository(db *sql.DB, log *slog.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log,
	}
}

const userColumns = `id, email, username, first_name, last_name, phone_number, is_active, created_at`

// FindByID retrieves a user by primary key.
func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		r.logError("find user by id", id, err)
		return nil, fmt.Errorf("select user by id: %w", err)
	}

	return user, nil
}

// Create persists a new user record.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
		INSERT INTO users (email, username, first_name, last_name, phone_number, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.Email,
		user.Username,
		user.FirstName,
		user.LastName,
		user.PhoneNumber,
		user.IsActive,
		user.CreatedAt,
	).Scan(&user.ID); err != nil {
		r.logError("create user", 0, err)
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// ListActive returns every active user, ordered by id for stable batching.
func (r *userRepository) ListActive(ctx context.Context) ([]domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE is_active = TRUE
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logError("list active users", 0, err)
		return nil, fmt.Errorf("select active users: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// ListByIDs returns the users matching the given ids, ordered by id.
func (r *userRepository) ListByIDs(ctx context.Context, ids []int64) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = ANY($1)
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		r.logError("list users by ids", 0, err)
		return nil, fmt.Errorf("select users by ids: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// ListRegisteredForEvent returns distinct users holding an active
// registration for the event.
func (r *userRepository) ListRegisteredForEvent(ctx context.Context, eventID int64) ([]domain.User, error) {
	query := `
		SELECT DISTINCT u.id, u.email, u.username, u.first_name, u.last_name, u.phone_number, u.is_active, u.created_at
		FROM users u
		JOIN event_registrations er ON er.user_id = u.id
		WHERE er.event_id = $1 AND er.status = $2
		ORDER BY u.id
	`

	rows, err := r.db.QueryContext(ctx, query, eventID, domain.StatusRegistered)
	if err != nil {
		r.logError("list registered users", eventID, err)
		return nil, fmt.Errorf("select registered users for event: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.PhoneNumber,
		&user.IsActive,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}

	return &user, nil
}

func collectUsers(rows *sql.Rows) ([]domain.User, error) {
	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

func (r *userRepository) logError(operation string, id int64, err error) {
	if r.log == nil || err == nil {
		return
	}

	r.log.Error("user repository operation failed",
		slog.String("operation", operation),
		slog.Int64("id", id),
		slog.Any("error", err),
	)
}
