// ABOUTME: Human readable clocks and durations for timers and reports.
// ABOUTME: Shared by the TUI, the CLI listings, and the timer snapshots.
package format

import (
	"fmt"
	"math"
	"strings"
)

// Clock renders seconds as MM:SS, or HH:MM:SS once an hour is reached.
// Negative input is treated as zero.
func Clock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// Duration renders seconds as "1h 30m 45s", omitting zero parts.
func Duration(seconds int) string {
	if seconds <= 0 {
		return "0s"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	var parts []string
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	if s > 0 {
		parts = append(parts, fmt.Sprintf("%ds", s))
	}
	return strings.Join(parts, " ")
}

// DurationLabel names a configured work length: "25 minutes", "1h", "1h 30min".
func DurationLabel(minutes int) string {
	if minutes >= 60 {
		h := minutes / 60
		rem := minutes % 60
		if rem == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh %dmin", h, rem)
	}
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}

// TotalTime renders an accumulated minute count: "45s", "25min", "2h", "2h5m".
func TotalTime(minutes float64) string {
	rounded := math.Round(minutes*100) / 100

	if rounded < 1 {
		return fmt.Sprintf("%ds", int(math.Round(rounded*60)))
	}
	if rounded < 60 {
		whole := int(math.Round(rounded))
		if whole == 60 {
			return "1h"
		}
		return fmt.Sprintf("%dmin", whole)
	}

	h := int(rounded / 60)
	m := int(math.Round(math.Mod(rounded, 60)))
	if m == 60 {
		h++
		m = 0
	}
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh%dm", h, m)
}

// Hours renders fractional hours with two decimals, as in the stats tables.
func Hours(h float64) string {
	return fmt.Sprintf("%.2fh", h)
}
