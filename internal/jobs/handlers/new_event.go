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

// NewEventHandler announces a freshly published event to every active user.
type NewEventHandler struct {
	users    repository.UserRepository
	events   repository.EventRepository
	prefs    *preferences.Resolver
	notifier *notify.Service
	log      *slog.Logger
}

func NewNewEventHandler(users repository.UserRepository, events repository.EventRepository, prefs *preferences.Resolver, notifier *notify.Service, log *slog.Logger) *NewEventHandler {
	return &NewEventHandler{
		users:    users,
		events:   events,
		prefs:    prefs,
		notifier: notifier,
		log:      log,
	}
}

func (h *NewEventHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.NewEventPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logPayloadError(h.log, ctx, t, err)
		return err
	}

	start := time.Now()
	err := h.Run(ctx, payload.EventID)
	metrics.RecordTask(t.Type(), taskStatus(err), time.Since(start))

	return err
}

func (h *NewEventHandler) Run(ctx context.Context, eventID int64) error {
	event, err := h.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	// The event can be unpublished between enqueue and execution.
	if !event.Published {
		return nil
	}

	settings := h.prefs.Get(ctx)
	if !settings.SendNewEventEmail && !settings.SendNewEventSMS {
		return nil
	}

	users, err := h.users.ListActive(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return nil
	}

	h.notifier.SendEventNotification(ctx, users, event, settings.SendNewEventEmail, settings.SendNewEventSMS)

	h.log.InfoContext(ctx, "announced new event",
		slog.Int64("event_id", event.ID),
		slog.Int("recipients", len(users)),
	)

	return nil
}
