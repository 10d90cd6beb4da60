package domain

import "time"

// OTPCode is a one-time verification code issued to a user, valid for a
// limited window.
type OTPCode struct {
	ID        int64
	UserID    int64
	Code      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the code is past its expiry at the given instant.
func (o OTPCode) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
