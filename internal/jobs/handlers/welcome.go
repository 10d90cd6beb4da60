// Package handlers contains the asynq task bodies of the notification
// pipeline. Every handler is also callable synchronously through its Run
// method; a task whose domain record disappeared between enqueue and
// execution exits as a no-op.
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

// WelcomeHandler greets a freshly created user: a welcome notification plus,
// when enabled, a signup confirmation.
type WelcomeHandler struct {
	users    repository.UserRepository
	prefs    *preferences.Resolver
	notifier *notify.Service
	log      *slog.Logger
}

func NewWelcomeHandler(users repository.UserRepository, prefs *preferences.Resolver, notifier *notify.Service, log *slog.Logger) *WelcomeHandler {
	return &WelcomeHandler{
		users:    users,
		prefs:    prefs,
		notifier: notifier,
		log:      log,
	}
}

func (h *WelcomeHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.WelcomePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logPayloadError(h.log, ctx, t, err)
		return err
	}

	start := time.Now()
	err := h.Run(ctx, payload.UserID)
	metrics.RecordTask(t.Type(), taskStatus(err), time.Since(start))

	return err
}

// Run resolves settings once and fans out over the enabled channels.
func (h *WelcomeHandler) Run(ctx context.Context, userID int64) error {
	user, err := h.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	settings := h.prefs.Get(ctx)

	if settings.SendWelcomeEmail || settings.SendWelcomeSMS {
		h.notifier.SendWelcome(ctx, user, settings.SendWelcomeEmail, settings.SendWelcomeSMS)
	}

	if settings.SendSignupEmail || settings.SendSignupSMS {
		h.notifier.SendSignupConfirmation(ctx, user, settings.SendSignupEmail, settings.SendSignupSMS)
	}

	return nil
}

func taskStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func logPayloadError(log *slog.Logger, ctx context.Context, t *asynq.Task, err error) {
	if log == nil {
		return
	}

	log.ErrorContext(ctx, "failed to decode task payload",
		slog.String("task_type", t.Type()),
		slog.Any("error", err),
	)
}
