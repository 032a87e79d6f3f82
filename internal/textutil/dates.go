package textutil

import (
	"regexp"
	"strings"
	"time"
)

const (
	isoDate      = "2006-01-02"
	isoLocalTime = "2006-01-02T15:04:05"
)

var isoDatePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

type dateLayout struct {
	parse  string
	output string
}

// Accepted input layouts, most specific first. Date-only inputs stay
// date-only; inputs with a zone keep it.
var dateLayouts = []dateLayout{
	{isoDate, isoDate},
	{"2006/01/02", isoDate},
	{"2 Jan 2006", isoDate},
	{"2 January 2006", isoDate},
	{"Jan 2, 2006", isoDate},
	{"January 2, 2006", isoDate},
	{time.RFC3339Nano, time.RFC3339},
	{"2006-01-02T15:04:05Z0700", time.RFC3339},
	{isoLocalTime, isoLocalTime},
	{"2006-01-02 15:04:05", isoLocalTime},
	{time.RFC1123Z, time.RFC3339},
	{time.RFC1123, time.RFC3339},
	{"Mon, 2 Jan 2006 15:04:05 -0700", time.RFC3339},
	{"Mon, 2 Jan 2006 15:04:05 MST", time.RFC3339},
	{time.RFC822Z, time.RFC3339},
	{time.RFC822, time.RFC3339},
}

// NormalizeDate converts a date in one of several common notations into an
// ISO-8601 string. It reports false for blank or unrecognized input.
func NormalizeDate(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}

	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout.parse, value)
		if err != nil {
			continue
		}
		return parsed.Format(layout.output), true
	}

	if prefix := isoDatePrefix.FindString(value); prefix != "" {
		if parsed, err := time.Parse(isoDate, prefix); err == nil {
			return parsed.Format(isoDate), true
		}
	}

	return "", false
}

// DateOf returns the calendar day of a normalized ISO-8601 value.
func DateOf(iso string) (time.Time, bool) {
	prefix := isoDatePrefix.FindString(strings.TrimSpace(iso))
	if prefix == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse(isoDate, prefix)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}
