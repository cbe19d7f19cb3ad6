package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDuration(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want string
	}{
		{"zero", 0, "0:00:00"},
		{"negative", -3, "0:00:00"},
		{"seconds", 59.9, "0:00:59"},
		{"minutes", 61, "0:01:01"},
		{"hours", 3*3600 + 5*60 + 7, "3:05:07"},
		{"long", 41 * 3600, "41:00:00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Duration(tc.in))
		})
	}
}

func TestClock(t *testing.T) {
	assert.Equal(t, "0:00", Clock(0))
	assert.Equal(t, "0:00", Clock(-1))
	assert.Equal(t, "4:05", Clock(245))
	assert.Equal(t, "1:00:00", Clock(3600))
}

func TestTimestamp(t *testing.T) {
	assert.Equal(t, Dash, Timestamp(time.Time{}))

	ts := time.Date(2024, 3, 9, 23, 30, 0, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "2024-03-09 22:30", Timestamp(ts))
}

func TestSize(t *testing.T) {
	assert.Equal(t, "0 B", Size(0))
	assert.Equal(t, "999 B", Size(999))
	assert.Equal(t, "1.0 KiB", Size(1024))
	assert.Equal(t, "1.5 GiB", Size(3*1024*1024*1024/2))
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "finished", Status(0.3, true))
	assert.Equal(t, "42%", Status(0.421, false))
	assert.Equal(t, Dash, Status(0, false))
}

func TestSmallHelpers(t *testing.T) {
	assert.Equal(t, "12.5%", Percent(0.125))
	assert.Equal(t, "1.5 h", Hours(5400))
	assert.Equal(t, "1,234", Count(1234))
	assert.Equal(t, "yes", YesNo(true))
	assert.Equal(t, "no", YesNo(false))
	assert.Equal(t, Dash, OrDash("  "))
	assert.Equal(t, "x", OrDash("x"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc…", Truncate("abcdef", 4))
	assert.Equal(t, "…", Truncate("abcdef", 1))
	assert.Equal(t, "abcdef", Truncate("abcdef", 0))
}
