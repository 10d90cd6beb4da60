package sms

import (
	"strings"
	"testing"
)

func TestRelativeTime(t *testing.T) {
	testCases := []struct {
		name       string
		hoursUntil int
		expected   string
	}{
		{name: "zero hours", hoursUntil: 0, expected: "in less than 1 hour"},
		{name: "one hour", hoursUntil: 1, expected: "in less than 1 hour"},
		{name: "same day", hoursUntil: 5, expected: "in 5 hours"},
		{name: "last hour of the day", hoursUntil: 23, expected: "in 23 hours"},
		{name: "exactly one day", hoursUntil: 24, expected: "in 1 day"},
		{name: "a day and change", hoursUntil: 30, expected: "in 1 day"},
		{name: "two days", hoursUntil: 48, expected: "in 2 days"},
		{name: "a week", hoursUntil: 170, expected: "in 7 days"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := RelativeTime(tc.hoursUntil); got != tc.expected {
				t.Fatalf("RelativeTime(%d) = %q, want %q", tc.hoursUntil, got, tc.expected)
			}
		})
	}
}

func TestUpcomingDigestFallback(t *testing.T) {
	items := []DigestItem{
		{Title: "Django Meetup", When: "Mar 5", URL: "https://djangocameroon.site/events/meetup"},
		{Title: "PyLadies Workshop", When: "Mar 12"},
		{Title: "Hackathon", When: "Mar 20"},
		{Title: "Sprint", When: "Mar 28"},
	}

	message := upcomingDigestFallback(items, "djangocameroon.site")

	if strings.Contains(message, "Sprint") {
		t.Errorf("digest should cap at %d items, got %q", digestItemCap, message)
	}
	for _, want := range []string{"Django Meetup", "PyLadies Workshop", "Hackathon", "djangocameroon.site/events"} {
		if !strings.Contains(message, want) {
			t.Errorf("digest missing %q: %q", want, message)
		}
	}
}

func TestUpcomingDigestFallbackEmpty(t *testing.T) {
	message := upcomingDigestFallback(nil, "djangocameroon.site")
	if message != "Upcoming events: djangocameroon.site/events" {
		t.Fatalf("unexpected empty digest: %q", message)
	}
}

func TestEventReminderFallback(t *testing.T) {
	message := eventReminderFallback("Django Meetup", 5, "https://djangocameroon.site/events/meetup")
	if !strings.Contains(message, "starts in 5 hours") {
		t.Errorf("reminder missing relative time: %q", message)
	}

	message = eventReminderFallback("Django Meetup", 5, "")
	if !strings.HasSuffix(message, "See you there!") {
		t.Errorf("reminder without URL should close with a greeting: %q", message)
	}
}

func TestCleanSiteURL(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{in: "https://djangocameroon.site/", expected: "djangocameroon.site"},
		{in: "http://djangocameroon.site", expected: "djangocameroon.site"},
		{in: "djangocameroon.site", expected: "djangocameroon.site"},
	}

	for _, tc := range testCases {
		if got := cleanSiteURL(tc.in); got != tc.expected {
			t.Errorf("cleanSiteURL(%q) = %q, want %q", tc.in, got, tc.expected)
		}
	}
}
