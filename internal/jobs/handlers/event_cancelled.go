package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/djangocameroon/website-api/internal/jobs"
	"github.com/djangocameroon/website-api/internal/notify"
	"github.com/djangocameroon/website-api/internal/preferences"
	"github.com/djangocameroon/website-api/internal/repository"
	"github.com/djangocameroon/website-api/pkg/metrics"
)

// EventCancelledHandler tells the registered attendees of an event that it
// was cancelled, optionally with a reason and reschedule details.
type EventCancelledHandler struct {
	users    repository.UserRepository
	events   repository.EventRepository
	prefs    *preferences.Resolver
	notifier *notify.Service
	log      *slog.Logger
}

func NewEventCancelledHandler(users repository.UserRepository, events repository.EventRepository, prefs *preferences.Resolver, notifier *notify.Service, log *slog.Logger) *EventCancelledHandler {
	return &EventCancelledHandler{
		users:    users,
		events:   events,
		prefs:    prefs,
		notifier: notifier,
		log:      log,
	}
}

func (h *EventCancelledHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.EventCancelledPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logPayloadError(h.log, ctx, t, err)
		return err
	}

	start := time.Now()
	err := h.Run(ctx, payload.EventID, payload.CancellationReason, payload.RescheduleInfo)
	metrics.RecordTask(t.Type(), taskStatus(err), time.Since(start))

	return err
}

func (h *EventCancelledHandler) Run(ctx context.Context, eventID int64, reason, rescheduleInfo string) error {
	event, err := h.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	settings := h.prefs.Get(ctx)
	if !settings.SendEventCancelledEmail && !settings.SendEventCancelledSMS {
		return nil
	}

	users, err := h.users.ListRegisteredForEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return nil
	}

	h.notifier.SendEventCancelled(ctx, users, event, reason, rescheduleInfo,
		settings.SendEventCancelledEmail, settings.SendEventCancelledSMS)

	h.log.InfoContext(ctx, "notified attendees of cancellation",
		slog.Int64("event_id", event.ID),
		slog.Int("recipients", len(users)),
	)

	return nil
}
