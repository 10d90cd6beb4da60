package triggers

import (
	"testing"

	"github.com/djangocameroon/website-api/internal/domain"
)

func TestParseUserAgent(t *testing.T) {
	testCases := []struct {
		name    string
		raw     string
		device  domain.DeviceType
		browser string
		os      string
	}{
		{
			name:    "chrome on windows desktop",
			raw:     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
			device:  domain.DeviceDesktop,
			browser: "Chrome",
			os:      "Windows",
		},
		{
			name:    "edge is not chrome",
			raw:     "Mozilla/5.0 (Windows NT 10.0) AppleWebKit/537.36 Chrome/120.0 Safari/537.36 Edg/120.0",
			device:  domain.DeviceDesktop,
			browser: "Edge",
			os:      "Windows",
		},
		{
			name:    "safari on iphone",
			raw:     "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Version/17.0 Mobile/15E148 Safari/604.1",
			device:  domain.DeviceMobile,
			browser: "Safari",
			os:      "macOS",
		},
		{
			name:    "ipad is a tablet",
			raw:     "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Version/17.0 Safari/604.1",
			device:  domain.DeviceTablet,
			browser: "Safari",
			os:      "macOS",
		},
		{
			name:    "firefox on linux",
			raw:     "Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0",
			device:  domain.DeviceDesktop,
			browser: "Firefox",
			os:      "Linux",
		},
		{
			name:    "android phone reports linux",
			raw:     "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 Chrome/120.0 Mobile Safari/537.36",
			device:  domain.DeviceMobile,
			browser: "Chrome",
			os:      "Linux",
		},
		{
			name:    "mobile token wins over tablet token",
			raw:     "Mozilla/5.0 (Linux; Android 14; SM-X510 Tablet) AppleWebKit/537.36 Chrome/120.0 Mobile Safari/537.36",
			device:  domain.DeviceMobile,
			browser: "Chrome",
			os:      "Linux",
		},
		{
			name:    "empty header stays unknown",
			raw:     "",
			device:  domain.DeviceUnknown,
			browser: "Unknown",
			os:      "Unknown",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			agent := ParseUserAgent(tc.raw)

			if agent.Device != tc.device {
				t.Errorf("device = %q, want %q", agent.Device, tc.device)
			}
			if agent.Browser != tc.browser {
				t.Errorf("browser = %q, want %q", agent.Browser, tc.browser)
			}
			if agent.OS != tc.os {
				t.Errorf("os = %q, want %q", agent.OS, tc.os)
			}
		})
	}
}
