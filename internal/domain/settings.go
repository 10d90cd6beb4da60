package domain

import "time"

// NotificationSettings is the singleton record gating every notification kind
// per channel. Exactly one live row exists; when it cannot be read the
// defaults below apply.
type NotificationSettings struct {
	SendWelcomeEmail bool
	SendWelcomeSMS   bool

	SendSignupEmail bool
	SendSignupSMS   bool

	SendNewEventEmail bool
	SendNewEventSMS   bool

	SendEventCancelledEmail bool
	SendEventCancelledSMS   bool

	SendEventReminderEmail bool
	SendEventReminderSMS   bool

	SendUpcomingDigestEmail bool
	SendUpcomingDigestSMS   bool

	SendRegistrationConfirmationEmail bool
	SendRegistrationConfirmationSMS   bool

	SendNewLocationLoginEmail bool
	SendNewLocationLoginSMS   bool

	UpdatedAt time.Time
}

// DefaultSettings returns the hardcoded fallback used whenever the settings
// row is unavailable, including before migrations have run.
func DefaultSettings() NotificationSettings {
	return NotificationSettings{
		SendWelcomeEmail: true,
		SendWelcomeSMS:   false,

		SendSignupEmail: false,
		SendSignupSMS:   false,

		SendNewEventEmail: true,
		SendNewEventSMS:   false,

		SendEventCancelledEmail: true,
		SendEventCancelledSMS:   true,

		SendEventReminderEmail: true,
		SendEventReminderSMS:   true,

		SendUpcomingDigestEmail: true,
		SendUpcomingDigestSMS:   false,

		SendRegistrationConfirmationEmail: true,
		SendRegistrationConfirmationSMS:   true,

		SendNewLocationLoginEmail: true,
		SendNewLocationLoginSMS:   true,
	}
}
