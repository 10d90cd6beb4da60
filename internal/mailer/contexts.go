package mailer

// Template context schemas, one per notification kind. Keeping these as
// structs ties each template to a compile-time-known shape.

type welcomeContext struct {
	UserName string
	SiteURL  string
}

type eventContext struct {
	UserName      string
	EventTitle    string
	EventDate     string
	EventLocation string
	EventURL      string
	SpeakerName   string
}

type eventCancelledContext struct {
	UserName           string
	EventTitle         string
	EventDate          string
	EventURL           string
	CancellationReason string
	RescheduleInfo     string
}

type upcomingEventsContext struct {
	UserName string
	SiteURL  string
	Events   []upcomingEventEntry
}

type upcomingEventEntry struct {
	Title    string
	Date     string
	Location string
	URL      string
}

type registrationContext struct {
	UserName         string
	EventTitle       string
	EventDate        string
	EventLocation    string
	EventURL         string
	RegistrationCode string
}

type loginAlertContext struct {
	UserName  string
	LoginTime string
	IPAddress string
	Location  string
	Device    string
	Browser   string
	SiteURL   string
}

type otpContext struct {
	Code string
}
