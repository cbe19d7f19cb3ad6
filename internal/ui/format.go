package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Dash marks an absent value in tables
const Dash = "-"

// Duration formats seconds as h:mm:ss
func Duration(seconds float64) string {
	if seconds <= 0 {
		return "0:00:00"
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d:%02d", total/3600, total%3600/60, total%60)
}

// Clock formats a playback position as h:mm:ss, or m:ss below one hour
func Clock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h, m, s := total/3600, total%3600/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Timestamp formats t in UTC minutes, or Dash for the zero time
func Timestamp(t time.Time) string {
	if t.IsZero() {
		return Dash
	}
	return t.UTC().Format("2006-01-02 15:04")
}

// Size formats a byte count in binary units
func Size(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(bytes))
}

// Hours formats seconds as fractional hours
func Hours(seconds float64) string {
	return fmt.Sprintf("%.1f h", seconds/3600)
}

// Percent formats a 0..1 ratio with one decimal
func Percent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

// Count formats an integer with thousands separators
func Count(n int) string {
	return humanize.Comma(int64(n))
}

// Status summarizes listening state as finished, a rounded percentage or Dash
func Status(progress float64, finished bool) string {
	switch {
	case finished:
		return "finished"
	case progress > 0:
		return fmt.Sprintf("%.0f%%", math.Floor(progress*100+0.5))
	default:
		return Dash
	}
}

// YesNo renders a flag
func YesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// OrDash returns s, or Dash when blank
func OrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return Dash
	}
	return s
}

// Truncate shortens s to limit runes with a trailing ellipsis
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}
	return string(runes[:limit-1]) + "…"
}
