package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/djangocameroon/website-api/internal/jobs"
	"github.com/djangocameroon/website-api/internal/notify"
	"github.com/djangocameroon/website-api/internal/preferences"
	"github.com/djangocameroon/website-api/internal/repository"
	"github.com/djangocameroon/website-api/pkg/metrics"
)

// UpcomingDigestHandler is the scheduled batch job mailing every active user
// a digest of the events published for the next `days` days. A period with
// no events sends nothing.
type UpcomingDigestHandler struct {
	users    repository.UserRepository
	events   repository.EventRepository
	prefs    *preferences.Resolver
	notifier *notify.Service
	log      *slog.Logger
	now      func() time.Time
}

func NewUpcomingDigestHandler(users repository.UserRepository, events repository.EventRepository, prefs *preferences.Resolver, notifier *notify.Service, log *slog.Logger) *UpcomingDigestHandler {
	return &UpcomingDigestHandler{
		users:    users,
		events:   events,
		prefs:    prefs,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

func (h *UpcomingDigestHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.UpcomingDigestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logPayloadError(h.log, ctx, t, err)
		return err
	}

	start := time.Now()
	err := h.Run(ctx, payload.Days, payload.ForceSMS)
	metrics.RecordTask(t.Type(), taskStatus(err), time.Since(start))

	return err
}

func (h *UpcomingDigestHandler) Run(ctx context.Context, days int, forceSMS bool) error {
	settings := h.prefs.Get(ctx)

	sendEmail := settings.SendUpcomingDigestEmail
	sendSMS := forceSMS || settings.SendUpcomingDigestSMS
	if !sendEmail && !sendSMS {
		return nil
	}

	now := h.now()
	events, err := h.events.ListPublishedBetween(ctx, now, now.Add(time.Duration(days)*24*time.Hour))
	if err != nil {
		return err
	}
	if len(events) == 0 {
		h.log.InfoContext(ctx, "no upcoming events, skipping digest")
		return nil
	}

	users, err := h.users.ListActive(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return nil
	}

	h.notifier.SendUpcomingDigest(ctx, users, events, sendEmail, sendSMS)

	metrics.RecordBatchRecipients("upcoming_digest", len(users))
	h.log.InfoContext(ctx, "upcoming digest run finished",
		slog.Int("events", len(events)),
		slog.Int("recipients", len(users)),
	)

	return nil
}
