package domain

import "time"

// User represents a community member stored in the database.
type User struct {
	ID          int64
	Email       string
	Username    string
	FirstName   string
	LastName    string
	PhoneNumber string // E.164, empty when the user never provided one
	IsActive    bool
	CreatedAt   time.Time
}

// DisplayName returns the name used in notification copy.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}

	return u.Username
}

// CanReceiveSMS reports whether the user has a phone number on file.
func (u *User) CanReceiveSMS() bool {
	return u.PhoneNumber != ""
}
