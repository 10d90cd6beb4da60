package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	TaskTypeWelcome                  = "notification:welcome"
	TaskTypeNewEvent                 = "notification:new_event"
	TaskTypeEventCancelled           = "notification:event_cancelled"
	TaskTypeRegistrationConfirmation = "notification:registration_confirmation"
	TaskTypeLoginAlert               = "notification:login_alert"
	TaskTypeOTPEmail                 = "notification:otp_email"
	TaskTypeEventReminders           = "notification:event_reminders"
	TaskTypeUpcomingDigest           = "notification:upcoming_digest"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

type WelcomePayload struct {
	UserID int64 `json:"user_id"`
}

type NewEventPayload struct {
	EventID int64 `json:"event_id"`
}

type EventCancelledPayload struct {
	EventID            int64  `json:"event_id"`
	CancellationReason string `json:"cancellation_reason,omitempty"`
	RescheduleInfo     string `json:"reschedule_info,omitempty"`
}

type RegistrationConfirmationPayload struct {
	RegistrationID int64 `json:"registration_id"`
}

type LoginAlertPayload struct {
	LoginRecordID int64 `json:"login_record_id"`
}

type OTPEmailPayload struct {
	UserID int64 `json:"user_id"`
}

type EventRemindersPayload struct {
	Hours    int  `json:"hours"`
	ForceSMS bool `json:"force_sms"`
}

type UpcomingDigestPayload struct {
	Days     int  `json:"days"`
	ForceSMS bool `json:"force_sms"`
}

func NewWelcomeTask(userID int64) (*asynq.Task, error) {
	payload, err := json.Marshal(WelcomePayload{UserID: userID})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeWelcome, payload, asynq.Queue(QueueDefault)), nil
}

func NewNewEventTask(eventID int64) (*asynq.Task, error) {
	payload, err := json.Marshal(NewEventPayload{EventID: eventID})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeNewEvent, payload, asynq.Queue(QueueDefault)), nil
}

func NewEventCancelledTask(eventID int64, reason, rescheduleInfo string) (*asynq.Task, error) {
	payload, err := json.Marshal(EventCancelledPayload{
		EventID:            eventID,
		CancellationReason: reason,
		RescheduleInfo:     rescheduleInfo,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeEventCancelled, payload, asynq.Queue(QueueCritical)), nil
}

func NewRegistrationConfirmationTask(registrationID int64) (*asynq.Task, error) {
	payload, err := json.Marshal(RegistrationConfirmationPayload{RegistrationID: registrationID})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeRegistrationConfirmation, payload, asynq.Queue(QueueDefault)), nil
}

func NewLoginAlertTask(loginRecordID int64) (*asynq.Task, error) {
	payload, err := json.Marshal(LoginAlertPayload{LoginRecordID: loginRecordID})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeLoginAlert, payload, asynq.Queue(QueueCritical)), nil
}

func NewOTPEmailTask(userID int64) (*asynq.Task, error) {
	payload, err := json.Marshal(OTPEmailPayload{UserID: userID})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeOTPEmail, payload, asynq.Queue(QueueCritical)), nil
}

func NewEventRemindersTask(hours int, forceSMS bool) (*asynq.Task, error) {
	payload, err := json.Marshal(EventRemindersPayload{Hours: hours, ForceSMS: forceSMS})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeEventReminders, payload, asynq.Queue(QueueDefault)), nil
}

func NewUpcomingDigestTask(days int, forceSMS bool) (*asynq.Task, error) {
	payload, err := json.Marshal(UpcomingDigestPayload{Days: days, ForceSMS: forceSMS})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeUpcomingDigest, payload, asynq.Queue(QueueLow)), nil
}
