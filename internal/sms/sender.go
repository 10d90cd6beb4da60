package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/djangocameroon/website-api/pkg/config"
)

// Result reports the outcome of one SMS delivery attempt. SMS sends never
// return a Go error: failures are structured results the caller logs and
// moves past.
type Result struct {
	Success   bool
	MessageID string
	Err       string
}

// TemplateRenderer renders a named SMS template.
type TemplateRenderer interface {
	RenderSMS(name string, data any) (string, error)
}

// Sender delivers SMS messages through the HTTP gateway. When the gateway is
// unconfigured every send resolves to a failure result without network I/O.
type Sender struct {
	cfg      config.SMSConfig
	renderer TemplateRenderer
	client   *http.Client
	log      *slog.Logger
}

// NewSender constructs a Sender with a 10 second transport timeout.
func NewSender(cfg config.SMSConfig, renderer TemplateRenderer, log *slog.Logger) *Sender {
	return &Sender{
		cfg:      cfg,
		renderer: renderer,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      log,
	}
}

// Configured reports whether gateway credentials are present.
func (s *Sender) Configured() bool {
	if s.cfg.BaseURL == "" || s.cfg.SenderID == "" {
		return false
	}

	return s.cfg.APIKey != "" || (s.cfg.UserID != "" && s.cfg.Password != "")
}

// Send delivers one message to a phone number in E.164 format.
func (s *Sender) Send(ctx context.Context, toNumber, message string) Result {
	if !s.Configured() {
		return Result{
			Success: false,
			Err:     "SMS gateway not configured: set SMS credentials in the environment",
		}
	}

	if !strings.HasPrefix(toNumber, "+") {
		toNumber = "+" + toNumber
	}

	form := url.Values{}
	form.Set("userid", s.cfg.UserID)
	form.Set("password", s.cfg.Password)
	form.Set("senderid", s.cfg.SenderID)
	form.Set("sendMethod", "quick")
	form.Set("msgType", "text")
	form.Set("msg", message)
	form.Set("mobile", toNumber)
	form.Set("duplicatecheck", "true")
	form.Set("output", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Result{Success: false, Err: fmt.Sprintf("build gateway request: %v", err)}
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if s.cfg.APIKey != "" {
		req.Header.Set("apikey", s.cfg.APIKey)
	}

	start := time.Now()

	resp, err := s.client.Do(req)
	if err != nil {
		s.logSend(ctx, toNumber, time.Since(start), 0, err)
		return Result{Success: false, Err: fmt.Sprintf("gateway request failed: %v", err)}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	duration := time.Since(start)

	if resp.StatusCode != http.StatusOK {
		s.logSend(ctx, toNumber, duration, resp.StatusCode, nil)
		return Result{Success: false, Err: fmt.Sprintf("gateway returned %d: %s", resp.StatusCode, string(body))}
	}

	s.logSend(ctx, toNumber, duration, resp.StatusCode, nil)

	var parsed struct {
		TransactionID string `json:"transactionId"`
	}
	_ = json.Unmarshal(body, &parsed)

	return Result{Success: true, MessageID: parsed.TransactionID}
}

func (s *Sender) logSend(ctx context.Context, toNumber string, duration time.Duration, status int, err error) {
	if s.log == nil {
		return
	}

	attrs := []any{
		slog.String("to", toNumber),
		slog.Duration("duration", duration),
		slog.Int("status", status),
	}
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
		s.log.ErrorContext(ctx, "sms gateway request failed", attrs...)
		return
	}

	if status != http.StatusOK {
		s.log.WarnContext(ctx, "sms gateway rejected message", attrs...)
		return
	}

	s.log.InfoContext(ctx, "sms dispatched", attrs...)
}

// renderOrFallback renders the named template and degrades to the inline
// fallback on any rendering failure.
func (s *Sender) renderOrFallback(name string, data any, fallback string) string {
	if s.renderer == nil {
		return fallback
	}

	message, err := s.renderer.RenderSMS(name, data)
	if err != nil || strings.TrimSpace(message) == "" {
		return fallback
	}

	return message
}

// SendWelcome greets a new user.
func (s *Sender) SendWelcome(ctx context.Context, toNumber, userName string) Result {
	message := s.renderOrFallback(
		"welcome.txt",
		map[string]any{"UserName": userName},
		welcomeFallback(userName),
	)
	return s.Send(ctx, toNumber, message)
}

// SendSignupConfirmation confirms account creation.
func (s *Sender) SendSignupConfirmation(ctx context.Context, toNumber, userName string) Result {
	message := s.renderOrFallback(
		"signup_confirmation.txt",
		map[string]any{"UserName": userName},
		signupConfirmationFallback(userName),
	)
	return s.Send(ctx, toNumber, message)
}

// SendEventNotification announces a newly published event.
func (s *Sender) SendEventNotification(ctx context.Context, toNumber, title, date, location, eventURL string) Result {
	message := s.renderOrFallback(
		"event_notification.txt",
		map[string]any{"EventTitle": title, "EventDate": date, "EventLocation": location, "EventURL": eventURL},
		eventNotificationFallback(title, date, location, eventURL),
	)
	return s.Send(ctx, toNumber, message)
}

// SendEventCancelled informs a registered user about a cancellation.
func (s *Sender) SendEventCancelled(ctx context.Context, toNumber, title, date, eventURL string) Result {
	message := s.renderOrFallback(
		"event_cancelled.txt",
		map[string]any{"EventTitle": title, "EventDate": date, "EventURL": eventURL},
		eventCancelledFallback(title, date, eventURL),
	)
	return s.Send(ctx, toNumber, message)
}

// SendEventReminder reminds a registered user shortly before the event.
func (s *Sender) SendEventReminder(ctx context.Context, toNumber, title, date string, hoursUntil int, eventURL string) Result {
	message := s.renderOrFallback(
		"event_reminder.txt",
		map[string]any{
			"EventTitle": title,
			"EventDate":  date,
			"TimeText":   RelativeTime(hoursUntil),
			"EventURL":   eventURL,
		},
		eventReminderFallback(title, hoursUntil, eventURL),
	)
	return s.Send(ctx, toNumber, message)
}

// SendRegistrationConfirmation confirms an event registration.
func (s *Sender) SendRegistrationConfirmation(ctx context.Context, toNumber, title, code, eventURL string) Result {
	message := s.renderOrFallback(
		"registration_confirmation.txt",
		map[string]any{"EventTitle": title, "RegistrationCode": code, "EventURL": eventURL},
		registrationConfirmationFallback(title, code, eventURL),
	)
	return s.Send(ctx, toNumber, message)
}

// SendNewLocationLogin alerts about a login from an unseen location.
func (s *Sender) SendNewLocationLogin(ctx context.Context, toNumber, location, loginTime string) Result {
	message := s.renderOrFallback(
		"new_location_login.txt",
		map[string]any{"Location": location, "Time": loginTime},
		newLocationLoginFallback(location, loginTime),
	)
	return s.Send(ctx, toNumber, message)
}

// SendOTP delivers a one-time verification code.
func (s *Sender) SendOTP(ctx context.Context, toNumber, code string) Result {
	message := s.renderOrFallback(
		"otp.txt",
		map[string]any{"Code": code},
		otpFallback(code),
	)
	return s.Send(ctx, toNumber, message)
}

// SendUpcomingDigest delivers a compact digest of upcoming events, capped at
// three items.
func (s *Sender) SendUpcomingDigest(ctx context.Context, toNumber string, items []DigestItem, siteURL string) Result {
	site := cleanSiteURL(siteURL)
	if len(items) > digestItemCap {
		items = items[:digestItemCap]
	}

	message := s.renderOrFallback(
		"upcoming_events_digest.txt",
		map[string]any{"Items": items, "SiteURL": site},
		upcomingDigestFallback(items, site),
	)
	return s.Send(ctx, toNumber, message)
}
