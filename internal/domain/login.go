package domain

import "time"

// DeviceType categorizes the client that performed a login.
type DeviceType string

const (
	DeviceDesktop DeviceType = "desktop"
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
	DeviceUnknown DeviceType = "unknown"
)

// LoginRecord stores one login attempt for security monitoring.
type LoginRecord struct {
	ID               int64
	UserID           int64
	IPAddress        string
	UserAgent        string
	DeviceType       DeviceType
	Browser          string
	OS               string
	Country          string
	City             string
	IsNewLocation    bool
	LoginSuccessful  bool
	NotificationSent bool
	CreatedAt        time.Time
}

// LoginInfo is the denormalized login context passed to security alerts.
// Device and Browser are empty when they could not be derived.
type LoginInfo struct {
	Time      time.Time
	IPAddress string
	Location  string
	Device    string
	Browser   string
}

// LocationString formats a geolocation pair for notification copy.
func LocationString(country, city string) string {
	switch {
	case city != "" && country != "":
		return city + ", " + country
	case country != "":
		return country
	default:
		return "Unknown location"
	}
}
