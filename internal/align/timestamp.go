package align

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseTimestamp converts "HH:MM:SS.mmm" to milliseconds.
// Seconds are parsed as a float and the total is truncated toward zero.
func ParseTimestamp(s string) (int64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, &FormatError{Input: s, Reason: "expected HH:MM:SS.mmm"}
	}

	hours, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, &FormatError{Input: s, Reason: "invalid hours", Err: err}
	}
	minutes, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, &FormatError{Input: s, Reason: "invalid minutes", Err: err}
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, &FormatError{Input: s, Reason: "invalid seconds", Err: err}
	}
	if !ValidSeconds(seconds) {
		return 0, &FormatError{Input: s, Reason: "invalid seconds"}
	}

	total := float64(hours)*3600 + float64(minutes)*60 + seconds
	if !ValidSeconds(total) {
		return 0, &FormatError{Input: s, Reason: "timestamp out of range"}
	}
	return int64(total * 1000), nil
}

// FormatTimestamp renders milliseconds as "HH:MM:SS.mmm"
func FormatTimestamp(ms int64) string {
	sign := ""
	if ms < 0 {
		sign = "-"
		ms = -ms
	}
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	sec := ms / 1000 % 60
	return fmt.Sprintf("%s%02d:%02d:%02d.%03d", sign, h, m, sec, ms%1000)
}

// maxSeconds keeps the millisecond value inside int64
const maxSeconds = math.MaxInt64 / 1000

// ValidSeconds reports whether s is finite and converts to milliseconds
// without overflowing
func ValidSeconds(s float64) bool {
	return !math.IsNaN(s) && !math.IsInf(s, 0) && math.Abs(s) < maxSeconds
}

// SecondsToMillis converts a float seconds offset, as reported by sidecars,
// RTTM files and Deepgram, to milliseconds, truncating toward zero
func SecondsToMillis(s float64) int64 {
	return int64(s * 1000)
}
