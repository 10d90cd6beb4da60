package triggers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/djangocameroon/website-api/internal/domain"
	"github.com/djangocameroon/website-api/internal/jobs"
	"github.com/djangocameroon/website-api/internal/repository"
)

// EventWriter is the single save path for events. Routing every create and
// update through it is what makes the cancellation detector reliable: the
// persisted row is compared against the incoming state before the write, so
// any update that unpublishes an event is treated as a cancellation, however
// indirect.
type EventWriter struct {
	events repository.EventRepository
	queue  jobs.Manager
	log    *slog.Logger
}

func NewEventWriter(events repository.EventRepository, queue jobs.Manager, log *slog.Logger) *EventWriter {
	return &EventWriter{
		events: events,
		queue:  queue,
		log:    log,
	}
}

// Create persists a new event and announces it when it is already published.
func (w *EventWriter) Create(ctx context.Context, event *domain.Event) error {
	if err := w.events.Create(ctx, event); err != nil {
		return err
	}

	if !event.Published {
		return nil
	}

	task, err := jobs.NewNewEventTask(event.ID)
	if err != nil {
		w.logEnqueueError(ctx, jobs.TaskTypeNewEvent, err)
		return nil
	}

	enqueueTask(ctx, w.queue, w.log, task)

	return nil
}

// Update persists changes to an event. When the stored row was published and
// the incoming state is not, the registered attendees are notified of the
// cancellation with the given reason and reschedule details, which may be
// empty.
func (w *EventWriter) Update(ctx context.Context, event *domain.Event, reason, rescheduleInfo string) error {
	previous, err := w.events.FindByID(ctx, event.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	if err := w.events.Update(ctx, event); err != nil {
		return err
	}

	if previous == nil || !previous.Published || event.Published {
		return nil
	}

	task, err := jobs.NewEventCancelledTask(event.ID, reason, rescheduleInfo)
	if err != nil {
		w.logEnqueueError(ctx, jobs.TaskTypeEventCancelled, err)
		return nil
	}

	enqueueTask(ctx, w.queue, w.log, task)

	return nil
}

func (w *EventWriter) logEnqueueError(ctx context.Context, taskType string, err error) {
	logEnqueueError(ctx, w.log, taskType, err)
}
