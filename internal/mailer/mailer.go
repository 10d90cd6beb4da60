// Package mailer renders and sends HTML notification emails.
package mailer

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/djangocameroon/website-api/internal/domain"
	"github.com/djangocameroon/website-api/internal/repository"
)

// otpTTL is how long a one-time code stays valid.
const otpTTL = 10 * time.Minute

const (
	mailDateFormat      = "Jan 2, 2006 at 3:04 PM"
	mailShortDateFormat = "Jan 2, 2006"
	loginTimeFormat     = "Jan 2 at 3:04 PM"
)

// Renderer renders a named mail template.
type Renderer interface {
	RenderMail(name string, data any) (string, error)
}

// Mailer selects a template per notification kind, renders it, and hands the
// result to the transport. Transport failures are returned to the caller,
// which is expected to catch and log them.
type Mailer struct {
	transport Transport
	renderer  Renderer
	otps      repository.OTPRepository
	siteURL   string
	log       *slog.Logger
	now       func() time.Time
}

// NewMailer constructs a Mailer.
func NewMailer(transport Transport, renderer Renderer, otps repository.OTPRepository, siteURL string, log *slog.Logger) *Mailer {
	return &Mailer{
		transport: transport,
		renderer:  renderer,
		otps:      otps,
		siteURL:   siteURL,
		log:       log,
		now:       time.Now,
	}
}

func (m *Mailer) send(to, subject, templateName string, data any) error {
	body, err := m.renderer.RenderMail(templateName, data)
	if err != nil {
		return fmt.Errorf("render %s: %w", templateName, err)
	}

	if err := m.transport.Send(to, subject, body); err != nil {
		return fmt.Errorf("send %s to %s: %w", templateName, to, err)
	}

	return nil
}

// SendWelcome greets a newly created user.
func (m *Mailer) SendWelcome(ctx context.Context, user *domain.User) error {
	return m.send(user.Email, "Welcome to Django Cameroon", "welcome.html", welcomeContext{
		UserName: user.DisplayName(),
		SiteURL:  m.siteURL,
	})
}

// SendSignupConfirmation confirms that the account is ready.
func (m *Mailer) SendSignupConfirmation(ctx context.Context, user *domain.User) error {
	return m.send(user.Email, "Your Django Cameroon account is ready", "signup_confirmation.html", welcomeContext{
		UserName: user.DisplayName(),
		SiteURL:  m.siteURL,
	})
}

// SendEventNotification announces a newly published event.
func (m *Mailer) SendEventNotification(ctx context.Context, user *domain.User, event *domain.Event) error {
	subject := fmt.Sprintf("New Event: %s", event.Title)
	return m.send(user.Email, subject, "event_notification.html", eventContext{
		UserName:      user.DisplayName(),
		EventTitle:    event.Title,
		EventDate:     event.StartsAt.Format(mailDateFormat),
		EventLocation: event.Location,
		EventURL:      event.URL(m.siteURL),
		SpeakerName:   event.SpeakerName,
	})
}

// SendEventCancelled informs a registered user about a cancellation.
func (m *Mailer) SendEventCancelled(ctx context.Context, user *domain.User, event *domain.Event, reason, rescheduleInfo string) error {
	subject := fmt.Sprintf("Cancelled: %s", event.Title)
	return m.send(user.Email, subject, "event_cancelled.html", eventCancelledContext{
		UserName:           user.DisplayName(),
		EventTitle:         event.Title,
		EventDate:          event.StartsAt.Format(mailShortDateFormat),
		EventURL:           event.URL(m.siteURL),
		CancellationReason: reason,
		RescheduleInfo:     rescheduleInfo,
	})
}

// SendEventReminder reminds a registered user shortly before the event.
func (m *Mailer) SendEventReminder(ctx context.Context, user *domain.User, event *domain.Event) error {
	subject := fmt.Sprintf("Reminder: %s", event.Title)
	return m.send(user.Email, subject, "event_reminder.html", eventContext{
		UserName:      user.DisplayName(),
		EventTitle:    event.Title,
		EventDate:     event.StartsAt.Format(mailDateFormat),
		EventLocation: event.Location,
		EventURL:      event.URL(m.siteURL),
		SpeakerName:   event.SpeakerName,
	})
}

// SendUpcomingEvents delivers the upcoming-events digest to one user.
func (m *Mailer) SendUpcomingEvents(ctx context.Context, user *domain.User, events []domain.Event) error {
	entries := make([]upcomingEventEntry, 0, len(events))
	for i := range events {
		event := &events[i]
		entries = append(entries, upcomingEventEntry{
			Title:    event.Title,
			Date:     event.StartsAt.Format(mailDateFormat),
			Location: event.Location,
			URL:      event.URL(m.siteURL),
		})
	}

	return m.send(user.Email, "Upcoming events at Django Cameroon", "upcoming_events.html", upcomingEventsContext{
		UserName: user.DisplayName(),
		SiteURL:  m.siteURL,
		Events:   entries,
	})
}

// SendRegistrationConfirmation confirms an event registration.
func (m *Mailer) SendRegistrationConfirmation(ctx context.Context, user *domain.User, event *domain.Event, reg *domain.EventRegistration) error {
	subject := fmt.Sprintf("Registration confirmed: %s", event.Title)
	return m.send(user.Email, subject, "registration_confirmation.html", registrationContext{
		UserName:         user.DisplayName(),
		EventTitle:       event.Title,
		EventDate:        event.StartsAt.Format(mailDateFormat),
		EventLocation:    event.Location,
		EventURL:         event.URL(m.siteURL),
		RegistrationCode: reg.RegistrationCode,
	})
}

// SendNewLocationLoginAlert warns about a login from an unseen location.
func (m *Mailer) SendNewLocationLoginAlert(ctx context.Context, user *domain.User, info domain.LoginInfo) error {
	return m.send(user.Email, "Security alert: new login to your account", "new_location_login.html", loginAlertContext{
		UserName:  user.DisplayName(),
		LoginTime: info.Time.Format(loginTimeFormat),
		IPAddress: info.IPAddress,
		Location:  info.Location,
		Device:    info.Device,
		Browser:   info.Browser,
		SiteURL:   m.siteURL,
	})
}

// SendOTP issues a one-time code, persists it with its expiry, and mails it.
func (m *Mailer) SendOTP(ctx context.Context, user *domain.User) error {
	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	now := m.now().UTC()
	record := &domain.OTPCode{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: now.Add(otpTTL),
		CreatedAt: now,
	}
	if err := m.otps.Create(ctx, record); err != nil {
		return fmt.Errorf("persist otp: %w", err)
	}

	return m.send(user.Email, "OTP Code", "otp.html", otpContext{Code: code})
}

// VerifyOTP checks a submitted code, consuming it when valid.
func (m *Mailer) VerifyOTP(ctx context.Context, user *domain.User, code string) (bool, error) {
	record, err := m.otps.Find(ctx, user.ID, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if record.Expired(m.now().UTC()) {
		return false, nil
	}

	if err := m.otps.Delete(ctx, record.ID); err != nil {
		return false, err
	}

	return true, nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}
