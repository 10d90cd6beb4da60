package notify

// Kind identifies a notification kind. Each kind maps to a fixed pair of
// channel templates and a context schema.
type Kind string

const (
	KindWelcome                  Kind = "welcome"
	KindSignupConfirmation       Kind = "signup_confirmation"
	KindNewEvent                 Kind = "new_event"
	KindEventCancelled           Kind = "event_cancelled"
	KindEventReminder            Kind = "event_reminder"
	KindUpcomingDigest           Kind = "upcoming_digest"
	KindRegistrationConfirmation Kind = "registration_confirmation"
	KindNewLocationLogin         Kind = "new_location_login"
	KindOTP                      Kind = "otp"
)
