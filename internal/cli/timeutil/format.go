// Package timeutil formats durations and dates for centroctl.
package timeutil

import (
	"fmt"
	"time"
)

// FormatUptime renders a Go duration string as "3d 0h 30m 15s". Input that
// does not parse is returned unchanged.
func FormatUptime(uptime string) string {
	d, err := time.ParseDuration(uptime)
	if err != nil {
		return uptime
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// ParseDay accepts the day shorthands centroctl offers for --desde and
// --hasta ("hoy", "ayer", "manana") besides YYYY-MM-DD and RFC 3339, and
// returns the value in a form the server parses. Empty stays empty.
func ParseDay(s string, now time.Time) (string, error) {
	const day = "2006-01-02"
	switch s {
	case "":
		return "", nil
	case "hoy", "today":
		return now.Format(day), nil
	case "ayer", "yesterday":
		return now.AddDate(0, 0, -1).Format(day), nil
	case "manana", "mañana", "tomorrow":
		return now.AddDate(0, 0, 1).Format(day), nil
	}
	if _, err := time.Parse(day, s); err == nil {
		return s, nil
	}
	if _, err := time.Parse(time.RFC3339, s); err == nil {
		return s, nil
	}
	return "", fmt.Errorf("invalid date %q: use YYYY-MM-DD, RFC 3339, hoy, ayer or manana", s)
}
