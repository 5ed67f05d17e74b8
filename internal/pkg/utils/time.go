package utils

import (
	"time"
)

const (
	EMRTimestampLayout = "2006-01-02T15:04:05Z07:00"
	EMRDateLayout      = "2006-01-02"

	// The legacy EMR rejects timestamps it considers to be in its future.
	// Its clock interpretation is offset by a few minutes, so every
	// outbound timestamp is pushed back by this margin. Must stay exactly
	// 3 minutes to interoperate with that server.
	emrClockSkew = 3 * time.Minute
)

// ToEMRTimestamp renders t the way the legacy EMR expects:
// "YYYY-MM-DDTHH:mm:ssZ" in UTC, minus the 3-minute skew margin.
func ToEMRTimestamp(t time.Time) string {
	return t.Add(-emrClockSkew).UTC().Format(EMRTimestampLayout)
}

// ToEMRDate renders a date-only field (dateEnrolled, dateCompleted).
func ToEMRDate(t time.Time) string {
	return t.Format(EMRDateLayout)
}

func ParseEMRDate(value string) (time.Time, error) {
	return time.Parse(EMRDateLayout, value)
}

// ParseEMRTimestamp accepts the timestamp shapes the legacy EMR is known
// to emit: RFC3339 with or without fractional seconds, and the
// offset-without-colon form of its older endpoints.
func ParseEMRTimestamp(value string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05.000Z07:00",
		"2006-01-02T15:04:05.000-0700",
		"2006-01-02T15:04:05-0700",
	}
	var lastErr error
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
