// Package sms sends short text notifications through the SMS gateway.
package sms

import (
	"fmt"
	"strings"
)

// DigestItem is one upcoming event entry inside a digest SMS.
type DigestItem struct {
	Title string
	When  string
	URL   string
}

// digestItemCap keeps digest messages inside practical SMS length.
const digestItemCap = 3

// RelativeTime phrases how far away an event start is for reminder copy.
func RelativeTime(hoursUntil int) string {
	switch {
	case hoursUntil <= 1:
		return "in less than 1 hour"
	case hoursUntil < 24:
		return fmt.Sprintf("in %d hours", hoursUntil)
	default:
		days := hoursUntil / 24
		plural := ""
		if days > 1 {
			plural = "s"
		}
		return fmt.Sprintf("in %d day%s", days, plural)
	}
}

// The fallback builders below reproduce the informational content of the
// channel templates; they are used whenever template rendering fails.

func welcomeFallback(userName string) string {
	return fmt.Sprintf("Welcome to Django Cameroon, %s! We're excited to have you in our community. Visit djangocameroon.site to explore events.", userName)
}

func signupConfirmationFallback(userName string) string {
	return fmt.Sprintf("Hi %s, your Django Cameroon account is ready. Log in at djangocameroon.site to complete your profile and join upcoming events.", userName)
}

func eventNotificationFallback(title, date, location, eventURL string) string {
	base := fmt.Sprintf("New Event: %s on %s at %s.", title, date, location)
	if eventURL != "" {
		return base + " " + eventURL
	}
	return base + " Register now at djangocameroon.site"
}

func eventCancelledFallback(title, date, eventURL string) string {
	base := fmt.Sprintf("CANCELLED: %s scheduled for %s has been cancelled.", title, date)
	if eventURL != "" {
		return base + " " + eventURL
	}
	return base + " Check your email for details."
}

func eventReminderFallback(title string, hoursUntil int, eventURL string) string {
	base := fmt.Sprintf("Reminder: %s starts %s!", title, RelativeTime(hoursUntil))
	if eventURL != "" {
		return base + " " + eventURL
	}
	return base + " See you there!"
}

func registrationConfirmationFallback(title, code, eventURL string) string {
	msg := fmt.Sprintf("Registration confirmed for %s!", title)
	if code != "" {
		msg += " Your code: " + code
	}
	if eventURL != "" {
		msg += " " + eventURL
	} else {
		msg += " Check your email for details."
	}
	return msg
}

func newLocationLoginFallback(location, loginTime string) string {
	return fmt.Sprintf("Security Alert: New login detected from %s at %s. If this wasn't you, secure your account immediately.", location, loginTime)
}

func otpFallback(code string) string {
	return fmt.Sprintf("Your Django Cameroon verification code is: %s. This code expires in 10 minutes.", code)
}

func upcomingDigestFallback(items []DigestItem, siteURL string) string {
	if len(items) == 0 {
		return fmt.Sprintf("Upcoming events: %s/events", siteURL)
	}

	if len(items) > digestItemCap {
		items = items[:digestItemCap]
	}

	parts := make([]string, 0, len(items))
	for _, item := range items {
		title := item.Title
		if title == "" {
			title = "Event"
		}
		when := item.When
		if when == "" {
			when = "TBA"
		}

		if item.URL != "" {
			parts = append(parts, fmt.Sprintf("%s (%s): %s", title, when, item.URL))
		} else {
			parts = append(parts, fmt.Sprintf("%s (%s)", title, when))
		}
	}

	return fmt.Sprintf("Upcoming events: %s More: %s/events", strings.Join(parts, "; "), siteURL)
}

// cleanSiteURL strips the scheme and trailing slash for compact SMS copy.
func cleanSiteURL(siteURL string) string {
	s := strings.TrimPrefix(siteURL, "https://")
	s = strings.TrimPrefix(s, "http://")
	return strings.TrimRight(s, "/")
}
