package triggers

import (
	"strings"

	"github.com/djangocameroon/website-api/internal/domain"
)

// Agent is the coarse classification of a raw User-Agent header.
type Agent struct {
	Device  domain.DeviceType
	Browser string
	OS      string
}

// ParseUserAgent classifies a User-Agent header by substring matching. It is
// deliberately rough; the result only feeds notification copy, never logic.
func ParseUserAgent(raw string) Agent {
	agent := Agent{
		Device:  domain.DeviceUnknown,
		Browser: "Unknown",
		OS:      "Unknown",
	}
	if raw == "" {
		return agent
	}

	ua := strings.ToLower(raw)

	switch {
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "android") || strings.Contains(ua, "iphone"):
		agent.Device = domain.DeviceMobile
	case strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad"):
		agent.Device = domain.DeviceTablet
	default:
		agent.Device = domain.DeviceDesktop
	}

	switch {
	case strings.Contains(ua, "edg"):
		agent.Browser = "Edge"
	case strings.Contains(ua, "chrome"):
		agent.Browser = "Chrome"
	case strings.Contains(ua, "firefox"):
		agent.Browser = "Firefox"
	case strings.Contains(ua, "safari"):
		agent.Browser = "Safari"
	}

	switch {
	case strings.Contains(ua, "windows"):
		agent.OS = "Windows"
	case strings.Contains(ua, "mac"):
		agent.OS = "macOS"
	case strings.Contains(ua, "linux"):
		agent.OS = "Linux"
	case strings.Contains(ua, "android"):
		agent.OS = "Android"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad"):
		agent.OS = "iOS"
	}

	return agent
}
