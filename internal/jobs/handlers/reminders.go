package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/djangocameroon/website-api/internal/domain"
	"github.com/djangocameroon/website-api/internal/jobs"
	"github.com/djangocameroon/website-api/internal/notify"
	"github.com/djangocameroon/website-api/internal/preferences"
	"github.com/djangocameroon/website-api/internal/repository"
	"github.com/djangocameroon/website-api/pkg/metrics"
)

// reminderWindow is the slack on either side of the target start time. The
// job runs hourly, so a two hour window guarantees every event is picked up
// by exactly the runs that bracket its start.
const reminderWindow = time.Hour

// EventRemindersHandler is the scheduled batch job reminding registered
// attendees of events starting in roughly `hours` hours.
type EventRemindersHandler struct {
	users    repository.UserRepository
	events   repository.EventRepository
	regs     repository.RegistrationRepository
	prefs    *preferences.Resolver
	notifier *notify.Service
	log      *slog.Logger
	now      func() time.Time
}

func NewEventRemindersHandler(users repository.UserRepository, events repository.EventRepository, regs repository.RegistrationRepository, prefs *preferences.Resolver, notifier *notify.Service, log *slog.Logger) *EventRemindersHandler {
	return &EventRemindersHandler{
		users:    users,
		events:   events,
		regs:     regs,
		prefs:    prefs,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

func (h *EventRemindersHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.EventRemindersPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logPayloadError(h.log, ctx, t, err)
		return err
	}

	start := time.Now()
	err := h.Run(ctx, payload.Hours, payload.ForceSMS)
	metrics.RecordTask(t.Type(), taskStatus(err), time.Since(start))

	return err
}

// Run reminds every pending registration of events starting inside the
// window [now+hours-1h, now+hours+1h]. All pending registrations of a
// processed event are flagged in one statement once the fan-out finishes.
// A failing event is logged and skipped; its registrations keep
// reminder_sent=false and the next run picks them up again.
func (h *EventRemindersHandler) Run(ctx context.Context, hours int, forceSMS bool) error {
	settings := h.prefs.Get(ctx)

	sendEmail := settings.SendEventReminderEmail
	sendSMS := forceSMS || settings.SendEventReminderSMS
	if !sendEmail && !sendSMS {
		return nil
	}

	target := h.now().Add(time.Duration(hours) * time.Hour)
	events, err := h.events.ListPublishedBetween(ctx, target.Add(-reminderWindow), target.Add(reminderWindow))
	if err != nil {
		return err
	}

	total := 0
	failed := 0
	for i := range events {
		event := &events[i]

		sent, err := h.remindEvent(ctx, event, sendEmail, sendSMS)
		if err != nil {
			failed++
			h.log.ErrorContext(ctx, "event reminder failed",
				slog.Int64("event_id", event.ID),
				slog.Any("error", err),
			)
			continue
		}

		total += sent
	}

	metrics.RecordBatchRecipients("event_reminders", total)
	h.log.InfoContext(ctx, "event reminders run finished",
		slog.Int("events", len(events)),
		slog.Int("failed_events", failed),
		slog.Int("recipients", total),
	)

	return nil
}

// remindEvent fans out to the event's pending registrations and reports how
// many recipients were addressed.
func (h *EventRemindersHandler) remindEvent(ctx context.Context, event *domain.Event, sendEmail, sendSMS bool) (int, error) {
	regs, err := h.regs.ListPendingReminder(ctx, event.ID)
	if err != nil {
		return 0, err
	}
	if len(regs) == 0 {
		return 0, nil
	}

	userIDs := make([]int64, 0, len(regs))
	regIDs := make([]int64, 0, len(regs))
	for _, reg := range regs {
		userIDs = append(userIDs, reg.UserID)
		regIDs = append(regIDs, reg.ID)
	}

	users, err := h.users.ListByIDs(ctx, userIDs)
	if err != nil {
		return 0, err
	}

	h.notifier.SendEventReminder(ctx, users, event, sendEmail, sendSMS)

	if err := h.regs.MarkReminderSent(ctx, regIDs); err != nil {
		return 0, err
	}

	return len(users), nil
}
