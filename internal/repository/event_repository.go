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

// EventRepository defines persistence operations for events.
type EventRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Event, error)
	Create(ctx context.Context, event *domain.Event) error
	Update(ctx context.Context, event *domain.Event) error
	ListPublishedBetween(ctx context.Context, from, to time.Time) ([]domain.Event, error)
}

type eventRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewEventRepository creates a new SQL-backed event repository.
func NewEventRepository(db *sql.DB, log *slog.Logger) EventRepository {
	return &eventRepository{
		db:  db,
		log: log,
	}
}

const eventColumns = `id, title, slug, description, location, starts_at, published, tags, speaker_name, created_at, updated_at`

// FindByID retrieves an event by primary key.
func (r *eventRepository) FindByID(ctx context.Context, id int64) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		r.logError("find event by id", id, err)
		return nil, fmt.Errorf("select event by id: %w", err)
	}

	return event, nil
}

// Create persists a new event record.
func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	const query = `
		INSERT INTO events (title, slug, description, location, starts_at, published, tags, speaker_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING id
	`

	if err := r.db.QueryRowContext(
		ctx,
		query,
		event.Title,
		event.Slug,
		event.Description,
		event.Location,
		event.StartsAt,
		event.Published,
		pq.Array(event.Tags),
		event.SpeakerName,
		event.CreatedAt,
	).Scan(&event.ID); err != nil {
		r.logError("create event", 0, err)
		return fmt.Errorf("insert event: %w", err)
	}

	return nil
}

// Update overwrites the stored event with the supplied state.
func (r *eventRepository) Update(ctx context.Context, event *domain.Event) error {
	const query = `
		UPDATE events
		SET title = $2, slug = $3, description = $4, location = $5, starts_at = $6,
		    published = $7, tags = $8, speaker_name = $9, updated_at = $10
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		event.ID,
		event.Title,
		event.Slug,
		event.Description,
		event.Location,
		event.StartsAt,
		event.Published,
		pq.Array(event.Tags),
		event.SpeakerName,
		event.UpdatedAt,
	)
	if err != nil {
		r.logError("update event", event.ID, err)
		return fmt.Errorf("update event: %w", err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	return nil
}

// ListPublishedBetween returns published events starting inside [from, to],
// ordered by start time ascending.
func (r *eventRepository) ListPublishedBetween(ctx context.Context, from, to time.Time) ([]domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE published = TRUE AND starts_at >= $1 AND starts_at <= $2
		ORDER BY starts_at
	`

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		r.logError("list published events", 0, err)
		return nil, fmt.Errorf("select published events in window: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return events, nil
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	var event domain.Event
	if err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Slug,
		&event.Description,
		&event.Location,
		&event.StartsAt,
		&event.Published,
		pq.Array(&event.Tags),
		&event.SpeakerName,
		&event.CreatedAt,
		&event.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &event, nil
}

func (r *eventRepository) logError(operation string, id int64, err error) {
	if r.log == nil || err == nil {
		return
	}

	r.log.Error("event repository operation failed",
		slog.String("operation", operation),
		slog.Int64("id", id),
		slog.Any("error", err),
	)
}
