package handlers

import (
	"context"
	"encoding/json"
	"errors"
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

// LoginAlertHandler sends a security alert for a successful login from a
// location the account has never been seen at. The alert flag is flipped with
// a conditional update after sending so redeliveries stay silent.
type LoginAlertHandler struct {
	users    repository.UserRepository
	logins   repository.LoginRepository
	prefs    *preferences.Resolver
	notifier *notify.Service
	log      *slog.Logger
}

func NewLoginAlertHandler(users repository.UserRepository, logins repository.LoginRepository, prefs *preferences.Resolver, notifier *notify.Service, log *slog.Logger) *LoginAlertHandler {
	return &LoginAlertHandler{
		users:    users,
		logins:   logins,
		prefs:    prefs,
		notifier: notifier,
		log:      log,
	}
}

func (h *LoginAlertHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.LoginAlertPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logPayloadError(h.log, ctx, t, err)
		return err
	}

	start := time.Now()
	err := h.Run(ctx, payload.LoginRecordID)
	metrics.RecordTask(t.Type(), taskStatus(err), time.Since(start))

	return err
}

func (h *LoginAlertHandler) Run(ctx context.Context, loginRecordID int64) error {
	record, err := h.logins.FindByID(ctx, loginRecordID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if !record.LoginSuccessful || !record.IsNewLocation || record.NotificationSent {
		return nil
	}

	settings := h.prefs.Get(ctx)
	if !settings.SendNewLocationLoginEmail && !settings.SendNewLocationLoginSMS {
		return nil
	}

	user, err := h.users.FindByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	info := domain.LoginInfo{
		Time:      record.CreatedAt,
		IPAddress: record.IPAddress,
		Location:  domain.LocationString(record.Country, record.City),
		Device:    string(record.DeviceType),
		Browser:   record.Browser,
	}

	h.notifier.SendNewLocationLoginAlert(ctx, user, info,
		settings.SendNewLocationLoginEmail, settings.SendNewLocationLoginSMS)

	updated, err := h.logins.MarkNotificationSent(ctx, loginRecordID)
	if err != nil {
		return err
	}
	if !updated {
		h.log.WarnContext(ctx, "login alert already flagged by a concurrent worker",
			slog.Int64("login_record_id", loginRecordID),
		)
	}

	return nil
}
