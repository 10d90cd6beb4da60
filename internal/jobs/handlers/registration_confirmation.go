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

// RegistrationConfirmationHandler confirms an event registration exactly once.
// The confirmation flag is checked up front and flipped with a conditional
// update after sending, so a redelivered task never produces a second message.
type RegistrationConfirmationHandler struct {
	users    repository.UserRepository
	events   repository.EventRepository
	regs     repository.RegistrationRepository
	prefs    *preferences.Resolver
	notifier *notify.Service
	log      *slog.Logger
}

func NewRegistrationConfirmationHandler(users repository.UserRepository, events repository.EventRepository, regs repository.RegistrationRepository, prefs *preferences.Resolver, notifier *notify.Service, log *slog.Logger) *RegistrationConfirmationHandler {
	return &RegistrationConfirmationHandler{
		users:    users,
		events:   events,
		regs:     regs,
		prefs:    prefs,
		notifier: notifier,
		log:      log,
	}
}

func (h *RegistrationConfirmationHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.RegistrationConfirmationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logPayloadError(h.log, ctx, t, err)
		return err
	}

	start := time.Now()
	err := h.Run(ctx, payload.RegistrationID)
	metrics.RecordTask(t.Type(), taskStatus(err), time.Since(start))

	return err
}

func (h *RegistrationConfirmationHandler) Run(ctx context.Context, registrationID int64) error {
	reg, err := h.regs.FindByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if reg.ConfirmationSent {
		return nil
	}

	settings := h.prefs.Get(ctx)
	if !settings.SendRegistrationConfirmationEmail && !settings.SendRegistrationConfirmationSMS {
		return nil
	}

	user, err := h.users.FindByID(ctx, reg.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	event, err := h.events.FindByID(ctx, reg.EventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	h.notifier.SendRegistrationConfirmation(ctx, user, event, reg,
		settings.SendRegistrationConfirmationEmail, settings.SendRegistrationConfirmationSMS)

	updated, err := h.regs.MarkConfirmationSent(ctx, registrationID)
	if err != nil {
		return err
	}
	if !updated {
		h.log.WarnContext(ctx, "confirmation already flagged by a concurrent worker",
			slog.Int64("registration_id", registrationID),
		)
	}

	return nil
}
