package services

import (
	"math"
	"time"
)

// GetCurrentTimestamp returns the current time in the stored timestamp layout.
func GetCurrentTimestamp() string {
	return formatTime(time.Now())
}

// formatTime uses a fixed-width UTC layout so stored timestamps sort lexically.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z")
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func roundOneDecimal(f float64) float64 {
	return math.Round(f*10) / 10
}
