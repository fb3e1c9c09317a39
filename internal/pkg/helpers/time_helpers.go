package helpers

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Layouts accepted for dates coming from the admin UI and the backend.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}

// ParseTime parses the date formats used by the backend and by datetime-local
// inputs. Values without a zone are read as UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseTimePtr is ParseTime for optional fields.
func ParseTimePtr(s *string) (time.Time, bool) {
	if s == nil {
		return time.Time{}, false
	}
	return ParseTime(*s)
}

// FormatTime renders t the way the backend stores instants.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
