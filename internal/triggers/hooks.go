// Package triggers turns domain writes into queued notification tasks. The
// hooks are invoked explicitly after the owning transaction commits, so a
// rolled back write never enqueues anything.
package triggers

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/djangocameroon/website-api/internal/domain"
	"github.com/djangocameroon/website-api/internal/jobs"
	"github.com/djangocameroon/website-api/internal/repository"
)

// Hooks enqueues the notification tasks that follow domain events. Enqueue
// failures are logged and swallowed: the domain write already committed and
// must not be failed retroactively.
type Hooks struct {
	queue  jobs.Manager
	logins repository.LoginRepository
	log    *slog.Logger
}

func NewHooks(queue jobs.Manager, logins repository.LoginRepository, log *slog.Logger) *Hooks {
	return &Hooks{
		queue:  queue,
		logins: logins,
		log:    log,
	}
}

// UserCreated queues the welcome flow for a new account.
func (h *Hooks) UserCreated(ctx context.Context, user *domain.User) {
	task, err := jobs.NewWelcomeTask(user.ID)
	if err != nil {
		h.logEnqueueError(ctx, jobs.TaskTypeWelcome, err)
		return
	}

	h.enqueue(ctx, task)
}

// RegistrationCreated queues the registration confirmation.
func (h *Hooks) RegistrationCreated(ctx context.Context, reg *domain.EventRegistration) {
	task, err := jobs.NewRegistrationConfirmationTask(reg.ID)
	if err != nil {
		h.logEnqueueError(ctx, jobs.TaskTypeRegistrationConfirmation, err)
		return
	}

	h.enqueue(ctx, task)
}

// LoginSucceeded records a successful login and, when the location is new
// for the account, queues a security alert. The record passed in is enriched
// with the parsed user agent and the new-location verdict before it is saved.
func (h *Hooks) LoginSucceeded(ctx context.Context, record *domain.LoginRecord) error {
	agent := ParseUserAgent(record.UserAgent)
	record.DeviceType = agent.Device
	record.Browser = agent.Browser
	record.OS = agent.OS
	record.LoginSuccessful = true

	isNew, err := h.isNewLocation(ctx, record)
	if err != nil {
		return err
	}
	record.IsNewLocation = isNew

	if err := h.logins.Create(ctx, record); err != nil {
		return err
	}

	if !isNew {
		return nil
	}

	task, err := jobs.NewLoginAlertTask(record.ID)
	if err != nil {
		h.logEnqueueError(ctx, jobs.TaskTypeLoginAlert, err)
		return nil
	}

	h.enqueue(ctx, task)

	return nil
}

// LoginFailed records an unsuccessful attempt. No notification follows.
func (h *Hooks) LoginFailed(ctx context.Context, record *domain.LoginRecord) error {
	agent := ParseUserAgent(record.UserAgent)
	record.DeviceType = agent.Device
	record.Browser = agent.Browser
	record.OS = agent.OS
	record.LoginSuccessful = false

	return h.logins.Create(ctx, record)
}

// OTPRequested queues a one-time password email for the user.
func (h *Hooks) OTPRequested(ctx context.Context, user *domain.User) {
	task, err := jobs.NewOTPEmailTask(user.ID)
	if err != nil {
		h.logEnqueueError(ctx, jobs.TaskTypeOTPEmail, err)
		return
	}

	h.enqueue(ctx, task)
}

// isNewLocation reports whether the account has no prior successful login
// from either the same IP or the same country and city pair. The place check
// only applies when geolocation resolved a country; without it an empty pair
// would match every ungeolocated login on record.
func (h *Hooks) isNewLocation(ctx context.Context, record *domain.LoginRecord) (bool, error) {
	fromIP, err := h.logins.HasSuccessfulLoginFromIP(ctx, record.UserID, record.IPAddress)
	if err != nil {
		return false, err
	}
	if fromIP {
		return false, nil
	}

	if record.Country == "" {
		return true, nil
	}

	fromPlace, err := h.logins.HasSuccessfulLoginFromPlace(ctx, record.UserID, record.Country, record.City)
	if err != nil {
		return false, err
	}

	return !fromPlace, nil
}

func (h *Hooks) enqueue(ctx context.Context, task *asynq.Task) {
	enqueueTask(ctx, h.queue, h.log, task)
}

func (h *Hooks) logEnqueueError(ctx context.Context, taskType string, err error) {
	logEnqueueError(ctx, h.log, taskType, err)
}

func enqueueTask(ctx context.Context, queue jobs.Manager, log *slog.Logger, task *asynq.Task) {
	info, err := queue.Enqueue(ctx, task)
	if err != nil {
		logEnqueueError(ctx, log, task.Type(), err)
		return
	}

	log.DebugContext(ctx, "queued notification task",
		slog.String("task_type", task.Type()),
		slog.String("task_id", info.ID),
		slog.String("queue", info.Queue),
	)
}

func logEnqueueError(ctx context.Context, log *slog.Logger, taskType string, err error) {
	log.ErrorContext(ctx, "failed to enqueue notification task",
		slog.String("task_type", taskType),
		slog.Any("error", err),
	)
}
