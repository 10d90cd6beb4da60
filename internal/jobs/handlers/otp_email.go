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
	"github.com/djangocameroon/website-api/internal/repository"
	"github.com/djangocameroon/website-api/pkg/metrics"
)

// OTPMailer issues a one-time password and mails it to the user.
type OTPMailer interface {
	SendOTP(ctx context.Context, user *domain.User) error
}

// OTPEmailHandler delivers login one-time passwords. It bypasses the settings
// gate: a user who requested a code must receive it.
type OTPEmailHandler struct {
	users  repository.UserRepository
	mailer OTPMailer
	log    *slog.Logger
}

func NewOTPEmailHandler(users repository.UserRepository, mailer OTPMailer, log *slog.Logger) *OTPEmailHandler {
	return &OTPEmailHandler{
		users:  users,
		mailer: mailer,
		log:    log,
	}
}

func (h *OTPEmailHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.OTPEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logPayloadError(h.log, ctx, t, err)
		return err
	}

	start := time.Now()
	err := h.Run(ctx, payload.UserID)
	metrics.RecordTask(t.Type(), taskStatus(err), time.Since(start))

	return err
}

func (h *OTPEmailHandler) Run(ctx context.Context, userID int64) error {
	user, err := h.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	if err := h.mailer.SendOTP(ctx, user); err != nil {
		return err
	}

	h.log.InfoContext(ctx, "sent otp code", slog.Int64("user_id", userID))

	return nil
}
