package domain

import "time"

// Event represents a community gathering that users can register for.
type Event struct {
	ID          int64
	Title       string
	Slug        string
	Description string
	Location    string
	StartsAt    time.Time
	Published   bool
	Tags        []string
	SpeakerName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// URL builds the public event page address under siteURL.
func (e *Event) URL(siteURL string) string {
	base := siteURL
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}

	return base + "/events/" + e.Slug
}

// HoursUntil returns the whole number of hours between now and the event start.
func (e *Event) HoursUntil(now time.Time) int {
	return int(e.StartsAt.Sub(now).Hours())
}
