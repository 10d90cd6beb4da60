package domain

import (
	"strings"
	"testing"
	"time"
)

func TestEventURL(t *testing.T) {
	event := Event{Slug: "django-meetup"}

	testCases := []struct {
		name     string
		siteURL  string
		expected string
	}{
		{name: "plain", siteURL: "https://djangocameroon.site", expected: "https://djangocameroon.site/events/django-meetup"},
		{name: "trailing slash", siteURL: "https://djangocameroon.site/", expected: "https://djangocameroon.site/events/django-meetup"},
		{name: "many trailing slashes", siteURL: "https://djangocameroon.site///", expected: "https://djangocameroon.site/events/django-meetup"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := event.URL(tc.siteURL); got != tc.expected {
				t.Fatalf("URL(%q) = %q, want %q", tc.siteURL, got, tc.expected)
			}
		})
	}
}

func TestEventHoursUntil(t *testing.T) {
	now := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		startsAt time.Time
		expected int
	}{
		{name: "one day out", startsAt: now.Add(24 * time.Hour), expected: 24},
		{name: "ninety minutes truncates", startsAt: now.Add(90 * time.Minute), expected: 1},
		{name: "under an hour", startsAt: now.Add(30 * time.Minute), expected: 0},
		{name: "already started", startsAt: now.Add(-2 * time.Hour), expected: -2},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			event := Event{StartsAt: tc.startsAt}
			if got := event.HoursUntil(now); got != tc.expected {
				t.Fatalf("HoursUntil = %d, want %d", got, tc.expected)
			}
		})
	}
}

func TestUserDisplayName(t *testing.T) {
	withFirst := User{FirstName: "Amina", Username: "amina237"}
	if got := withFirst.DisplayName(); got != "Amina" {
		t.Errorf("DisplayName = %q, want first name", got)
	}

	withoutFirst := User{Username: "amina237"}
	if got := withoutFirst.DisplayName(); got != "amina237" {
		t.Errorf("DisplayName = %q, want username fallback", got)
	}
}

func TestNewRegistrationCode(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		code := NewRegistrationCode()

		if !strings.HasPrefix(code, "REG-") {
			t.Fatalf("code %q missing prefix", code)
		}
		suffix := strings.TrimPrefix(code, "REG-")
		if len(suffix) != 8 {
			t.Fatalf("code %q suffix length %d, want 8", code, len(suffix))
		}
		if suffix != strings.ToUpper(suffix) {
			t.Fatalf("code %q not uppercase", code)
		}
		if seen[code] {
			t.Fatalf("duplicate code %q", code)
		}
		seen[code] = true
	}
}

func TestLocationString(t *testing.T) {
	testCases := []struct {
		name     string
		country  string
		city     string
		expected string
	}{
		{name: "city and country", country: "Cameroon", city: "Douala", expected: "Douala, Cameroon"},
		{name: "country only", country: "Cameroon", expected: "Cameroon"},
		{name: "nothing known", expected: "Unknown location"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := LocationString(tc.country, tc.city); got != tc.expected {
				t.Fatalf("LocationString = %q, want %q", got, tc.expected)
			}
		})
	}
}

func TestAttendanceRate(t *testing.T) {
	stats := AttendanceStats{TotalRegistered: 4, TotalAttended: 4, TotalNoShow: 2}
	if got := stats.AttendanceRate(); got != 40.0 {
		t.Errorf("AttendanceRate = %v, want 40", got)
	}

	empty := AttendanceStats{}
	if got := empty.AttendanceRate(); got != 0 {
		t.Errorf("AttendanceRate on empty stats = %v, want 0", got)
	}
}

func TestOTPExpired(t *testing.T) {
	now := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)

	fresh := OTPCode{ExpiresAt: now.Add(time.Minute)}
	if fresh.Expired(now) {
		t.Error("code expiring in a minute must still be valid")
	}

	stale := OTPCode{ExpiresAt: now.Add(-time.Second)}
	if !stale.Expired(now) {
		t.Error("past expiry must report expired")
	}
}
