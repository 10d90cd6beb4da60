// Package notify orchestrates notification delivery across the email and SMS
// channels.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/djangocameroon/website-api/internal/domain"
	"github.com/djangocameroon/website-api/internal/sms"
	"github.com/djangocameroon/website-api/pkg/metrics"
)

const (
	smsDateFormat      = "Jan 2, 2006 at 3:04 PM"
	smsShortDateFormat = "Jan 2, 2006"
	smsDigestDayFormat = "Jan 2"
	smsLoginTimeFormat = "Jan 2 at 3:04 PM"
)

// Mailer is the email channel consumed by the service.
type Mailer interface {
	SendWelcome(ctx context.Context, user *domain.User) error
	SendSignupConfirmation(ctx context.Context, user *domain.User) error
	SendEventNotification(ctx context.Context, user *domain.User, event *domain.Event) error
	SendEventCancelled(ctx context.Context, user *domain.User, event *domain.Event, reason, rescheduleInfo string) error
	SendEventReminder(ctx context.Context, user *domain.User, event *domain.Event) error
	SendUpcomingEvents(ctx context.Context, user *domain.User, events []domain.Event) error
	SendRegistrationConfirmation(ctx context.Context, user *domain.User, event *domain.Event, reg *domain.EventRegistration) error
	SendNewLocationLoginAlert(ctx context.Context, user *domain.User, info domain.LoginInfo) error
}

// SMSSender is the SMS channel consumed by the service.
type SMSSender interface {
	SendWelcome(ctx context.Context, toNumber, userName string) sms.Result
	SendSignupConfirmation(ctx context.Context, toNumber, userName string) sms.Result
	SendEventNotification(ctx context.Context, toNumber, title, date, location, eventURL string) sms.Result
	SendEventCancelled(ctx context.Context, toNumber, title, date, eventURL string) sms.Result
	SendEventReminder(ctx context.Context, toNumber, title, date string, hoursUntil int, eventURL string) sms.Result
	SendRegistrationConfirmation(ctx context.Context, toNumber, title, code, eventURL string) sms.Result
	SendNewLocationLogin(ctx context.Context, toNumber, location, loginTime string) sms.Result
	SendUpcomingDigest(ctx context.Context, toNumber string, items []sms.DigestItem, siteURL string) sms.Result
}

// Service is the single entry point per notification kind. Channel gating is
// resolved by the caller: the service only honors the sendEmail/sendSMS flags
// it is handed and performs no preference lookups itself. All delivery
// failures are swallowed and logged; nothing propagates to the caller.
type Service struct {
	mail    Mailer
	sms     SMSSender
	siteURL string
	log     *slog.Logger
	now     func() time.Time
}

// NewService constructs a Service.
func NewService(mail Mailer, smsSender SMSSender, siteURL string, log *slog.Logger) *Service {
	return &Service{
		mail:    mail,
		sms:     smsSender,
		siteURL: siteURL,
		log:     log,
		now:     time.Now,
	}
}

// SendWelcome greets a new user over the enabled channels.
func (s *Service) SendWelcome(ctx context.Context, user *domain.User, sendEmail, sendSMS bool) {
	if sendEmail {
		s.emailAttempt(ctx, KindWelcome, user, func() error {
			return s.mail.SendWelcome(ctx, user)
		})
	}

	if sendSMS && user.CanReceiveSMS() {
		s.smsAttempt(ctx, KindWelcome, user, func() sms.Result {
			return s.sms.SendWelcome(ctx, user.PhoneNumber, user.DisplayName())
		})
	}
}

// SendSignupConfirmation confirms account creation over the enabled channels.
func (s *Service) SendSignupConfirmation(ctx context.Context, user *domain.User, sendEmail, sendSMS bool) {
	if sendEmail {
		s.emailAttempt(ctx, KindSignupConfirmation, user, func() error {
			return s.mail.SendSignupConfirmation(ctx, user)
		})
	}

	if sendSMS && user.CanReceiveSMS() {
		s.smsAttempt(ctx, KindSignupConfirmation, user, func() sms.Result {
			return s.sms.SendSignupConfirmation(ctx, user.PhoneNumber, user.DisplayName())
		})
	}
}

// SendEventNotification announces a new event to multiple users. Each
// recipient is processed independently: one failure never stops the loop.
func (s *Service) SendEventNotification(ctx context.Context, users []domain.User, event *domain.Event, sendEmail, sendSMS bool) {
	for i := range users {
		user := &users[i]

		if sendEmail {
			s.emailAttempt(ctx, KindNewEvent, user, func() error {
				return s.mail.SendEventNotification(ctx, user, event)
			})
		}

		if sendSMS && user.CanReceiveSMS() {
			s.smsAttempt(ctx, KindNewEvent, user, func() sms.Result {
				return s.sms.SendEventNotification(
					ctx,
					user.PhoneNumber,
					event.Title,
					event.StartsAt.Format(smsDateFormat),
					event.Location,
					event.URL(s.siteURL),
				)
			})
		}
	}
}

// SendEventCancelled notifies registered users about a cancellation.
func (s *Service) SendEventCancelled(ctx context.Context, users []domain.User, event *domain.Event, reason, rescheduleInfo string, sendEmail, sendSMS bool) {
	for i := range users {
		user := &users[i]

		if sendEmail {
			s.emailAttempt(ctx, KindEventCancelled, user, func() error {
				return s.mail.SendEventCancelled(ctx, user, event, reason, rescheduleInfo)
			})
		}

		if sendSMS && user.CanReceiveSMS() {
			s.smsAttempt(ctx, KindEventCancelled, user, func() sms.Result {
				return s.sms.SendEventCancelled(
					ctx,
					user.PhoneNumber,
					event.Title,
					event.StartsAt.Format(smsShortDateFormat),
					event.URL(s.siteURL),
				)
			})
		}
	}
}

// SendEventReminder reminds registered users shortly before the event.
func (s *Service) SendEventReminder(ctx context.Context, users []domain.User, event *domain.Event, sendEmail, sendSMS bool) {
	hoursUntil := event.HoursUntil(s.now())

	for i := range users {
		user := &users[i]

		if sendEmail {
			s.emailAttempt(ctx, KindEventReminder, user, func() error {
				return s.mail.SendEventReminder(ctx, user, event)
			})
		}

		if sendSMS && user.CanReceiveSMS() {
			s.smsAttempt(ctx, KindEventReminder, user, func() sms.Result {
				return s.sms.SendEventReminder(
					ctx,
					user.PhoneNumber,
					event.Title,
					event.StartsAt.Format(smsDateFormat),
					hoursUntil,
					event.URL(s.siteURL),
				)
			})
		}
	}
}

// SendUpcomingDigest delivers the upcoming-events digest to multiple users.
func (s *Service) SendUpcomingDigest(ctx context.Context, users []domain.User, events []domain.Event, sendEmail, sendSMS bool) {
	var items []sms.DigestItem
	for i := range events {
		if len(items) == 3 {
			break
		}
		event := &events[i]
		items = append(items, sms.DigestItem{
			Title: event.Title,
			When:  event.StartsAt.Format(smsDigestDayFormat),
			URL:   event.URL(s.siteURL),
		})
	}

	for i := range users {
		user := &users[i]

		if sendEmail {
			s.emailAttempt(ctx, KindUpcomingDigest, user, func() error {
				return s.mail.SendUpcomingEvents(ctx, user, events)
			})
		}

		if sendSMS && user.CanReceiveSMS() {
			s.smsAttempt(ctx, KindUpcomingDigest, user, func() sms.Result {
				return s.sms.SendUpcomingDigest(ctx, user.PhoneNumber, items, s.siteURL)
			})
		}
	}
}

// SendRegistrationConfirmation confirms one user's event registration.
func (s *Service) SendRegistrationConfirmation(ctx context.Context, user *domain.User, event *domain.Event, reg *domain.EventRegistration, sendEmail, sendSMS bool) {
	if sendEmail {
		s.emailAttempt(ctx, KindRegistrationConfirmation, user, func() error {
			return s.mail.SendRegistrationConfirmation(ctx, user, event, reg)
		})
	}

	if sendSMS && user.CanReceiveSMS() {
		s.smsAttempt(ctx, KindRegistrationConfirmation, user, func() sms.Result {
			return s.sms.SendRegistrationConfirmation(
				ctx,
				user.PhoneNumber,
				event.Title,
				reg.RegistrationCode,
				event.URL(s.siteURL),
			)
		})
	}
}

// SendNewLocationLoginAlert warns one user about a login from an unseen
// location.
func (s *Service) SendNewLocationLoginAlert(ctx context.Context, user *domain.User, info domain.LoginInfo, sendEmail, sendSMS bool) {
	if sendEmail {
		s.emailAttempt(ctx, KindNewLocationLogin, user, func() error {
			return s.mail.SendNewLocationLoginAlert(ctx, user, info)
		})
	}

	if sendSMS && user.CanReceiveSMS() {
		s.smsAttempt(ctx, KindNewLocationLogin, user, func() sms.Result {
			return s.sms.SendNewLocationLogin(
				ctx,
				user.PhoneNumber,
				info.Location,
				info.Time.Format(smsLoginTimeFormat),
			)
		})
	}
}

func (s *Service) emailAttempt(ctx context.Context, kind Kind, user *domain.User, send func() error) {
	if err := send(); err != nil {
		metrics.RecordNotification(string(kind), "email", "error")
		if s.log != nil {
			s.log.ErrorContext(ctx, "email notification failed",
				slog.String("kind", string(kind)),
				slog.String("email", user.Email),
				slog.Any("error", err),
			)
		}
		return
	}

	metrics.RecordNotification(string(kind), "email", "ok")
}

func (s *Service) smsAttempt(ctx context.Context, kind Kind, user *domain.User, send func() sms.Result) {
	result := send()
	if !result.Success {
		metrics.RecordNotification(string(kind), "sms", "error")
		if s.log != nil {
			s.log.WarnContext(ctx, "sms notification failed",
				slog.String("kind", string(kind)),
				slog.String("to", user.PhoneNumber),
				slog.String("error", result.Err),
			)
		}
		return
	}

	metrics.RecordNotification(string(kind), "sms", "ok")
}
