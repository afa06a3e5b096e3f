// ABOUTME: Tests for clock and duration formatting.
// ABOUTME: Table-driven checks of each formatter's boundaries.
package format

import "testing"

func TestClock(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "00:00"},
		{-4, "00:00"},
		{59, "00:59"},
		{25 * 60, "25:00"},
		{3599, "59:59"},
		{3600, "01:00:00"},
		{3661, "01:01:01"},
		{36000, "10:00:00"},
	}
	for _, tt := range tests {
		if got := Clock(tt.seconds); got != tt.want {
			t.Errorf("Clock(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "0s"},
		{45, "45s"},
		{60, "1m"},
		{5445, "1h 30m 45s"},
		{3600, "1h"},
		{3605, "1h 5s"},
	}
	for _, tt := range tests {
		if got := Duration(tt.seconds); got != tt.want {
			t.Errorf("Duration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestDurationLabel(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{1, "1 minute"},
		{25, "25 minutes"},
		{60, "1h"},
		{90, "1h 30min"},
		{120, "2h"},
	}
	for _, tt := range tests {
		if got := DurationLabel(tt.minutes); got != tt.want {
			t.Errorf("DurationLabel(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestTotalTime(t *testing.T) {
	tests := []struct {
		minutes float64
		want    string
	}{
		{0, "0s"},
		{0.75, "45s"},
		{25, "25min"},
		{25.4, "25min"},
		{59.7, "1h"},
		{120, "2h"},
		{125, "2h5m"},
		{119.6, "2h"},
	}
	for _, tt := range tests {
		if got := TotalTime(tt.minutes); got != tt.want {
			t.Errorf("TotalTime(%v) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestHours(t *testing.T) {
	if got := Hours(1.5); got != "1.50h" {
		t.Errorf("Hours(1.5) = %q", got)
	}
}
