package pubindex

import (
	"strings"
	"time"

	"github.com/goodsign/monday"
	"github.com/ncruces/go-strftime"
)

// DefaultDateFormat renders dates as "August 27, 2024".
const DefaultDateFormat = "January 2, 2006"

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// FormatDate renders t with format. A format containing '%' is read as a
// strftime specification; anything else is a Go layout, localised with
// locale (e.g. "fr_FR") when one is given.
func FormatDate(t time.Time, format, locale string) string {
	if format == "" {
		format = DefaultDateFormat
	}
	if strings.Contains(format, "%") {
		return strftime.Format(format, t)
	}
	if locale == "" {
		return t.Format(format)
	}
	return monday.Format(t, format, monday.Locale(locale))
}

// ValidLocale reports whether locale is empty or known to the formatter.
func ValidLocale(locale string) bool {
	if locale == "" {
		return true
	}
	for _, l := range monday.ListLocales() {
		if string(l) == locale {
			return true
		}
	}
	return false
}

// ParseDate converts a front matter value to a publication date. Only the
// calendar date is kept; the result is midnight UTC of the date as written.
func ParseDate(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		if val.IsZero() {
			return time.Time{}, false
		}
		return calendarDate(val), true
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return calendarDate(t), true
			}
		}
	}
	return time.Time{}, false
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// datePrefix extracts a Jekyll style "YYYY-MM-DD-" prefix from a file base
// name, returning the date and the remainder.
func datePrefix(base string) (time.Time, string, bool) {
	if len(base) < 11 || base[10] != '-' {
		return time.Time{}, base, false
	}
	t, err := time.Parse("2006-01-02", base[:10])
	if err != nil {
		return time.Time{}, base, false
	}
	return t, base[11:], true
}
