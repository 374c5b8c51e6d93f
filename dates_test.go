package pubindex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDate(t *testing.T) {
	d := date("2024-08-27")
	tests := []struct {
		name, format, locale, want string
	}{
		{"default", "", "", "August 27, 2024"},
		{"go layout", "2006-01-02", "", "2024-08-27"},
		{"strftime", "%Y-%m-%d", "", "2024-08-27"},
		{"strftime long", "%B %d, %Y", "", "August 27, 2024"},
		{"french", "2 January 2006", "fr_FR", "27 août 2024"},
		{"german", "2. January 2006", "de_DE", "27. August 2024"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDate(d, tt.format, tt.locale))
		})
	}
}

func TestValidLocale(t *testing.T) {
	assert.True(t, ValidLocale(""))
	assert.True(t, ValidLocale("en_US"))
	assert.True(t, ValidLocale("fr_FR"))
	assert.False(t, ValidLocale("klingon"))
}

func TestParseDate(t *testing.T) {
	want := date("2024-08-27")
	inputs := []any{
		"2024-08-27",
		" 2024-08-27 ",
		"2024-08-27 09:15",
		"2024-08-27 09:15:00",
		"2024-08-27 23:15:00 +0000",
		"2024-08-27T09:15:00",
		"2024-08-27T09:15:00Z",
		time.Date(2024, 8, 27, 18, 0, 0, 0, time.UTC),
	}
	for _, in := range inputs {
		got, ok := ParseDate(in)
		require.True(t, ok, "%v", in)
		assert.Equal(t, want, got, "%v", in)
	}
}

func TestParseDate_KeepsWrittenCalendarDay(t *testing.T) {
	// Late evening with a positive offset is still the 27th as written.
	got, ok := ParseDate("2024-08-27T23:30:00+05:00")
	require.True(t, ok)
	assert.Equal(t, date("2024-08-27"), got)
}

func TestParseDate_Rejects(t *testing.T) {
	for _, in := range []any{nil, "", "yesterday", "27/08/2024", 20240827, time.Time{}} {
		_, ok := ParseDate(in)
		assert.False(t, ok, "%v", in)
	}
}

func TestDatePrefix(t *testing.T) {
	d, rest, ok := datePrefix("2024-08-27-hello-world")
	require.True(t, ok)
	assert.Equal(t, date("2024-08-27"), d)
	assert.Equal(t, "hello-world", rest)

	_, rest, ok = datePrefix("hello-world")
	assert.False(t, ok)
	assert.Equal(t, "hello-world", rest)

	_, _, ok = datePrefix("2024-13-45-bad")
	assert.False(t, ok)
}
