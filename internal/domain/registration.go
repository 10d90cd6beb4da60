package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RegistrationStatus tracks the lifecycle of an event registration.
type RegistrationStatus string

const (
	StatusRegistered RegistrationStatus = "registered"
	StatusAttended   RegistrationStatus = "attended"
	StatusCancelled  RegistrationStatus = "cancelled"
	StatusNoShow     RegistrationStatus = "no_show"
)

// EventRegistration links a user to an event. Unique per (event, user).
type EventRegistration struct {
	ID               int64
	EventID          int64
	UserID           int64
	RegistrationCode string
	Status           RegistrationStatus
	CheckedIn        bool
	CheckInTime      *time.Time
	ReminderSent     bool
	ConfirmationSent bool
	Notes            string
	CreatedAt        time.Time
}

// NewRegistrationCode generates a unique human-readable registration code.
func NewRegistrationCode() string {
	return "REG-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// AttendanceStats aggregates registration outcomes for a single event.
type AttendanceStats struct {
	EventID         int64
	TotalRegistered int
	TotalAttended   int
	TotalCancelled  int
	TotalNoShow     int
}

// AttendanceRate returns the attended share in percent, 0 when nothing to count.
func (s AttendanceStats) AttendanceRate() float64 {
	total := s.TotalRegistered + s.TotalAttended + s.TotalNoShow
	if total == 0 {
		return 0
	}

	return float64(s.TotalAttended) / float64(total) * 100
}
