package preset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// maxHours keeps hours plus a sub-hour remainder inside time.Duration.
const maxHours = math.MaxInt64/int64(time.Hour) - 1

// ParseDuration parses an HH:MM:SS capture length. Zero is rejected since a
// capture must record something.
func ParseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, newError(ErrCodeInvalidDuration, "duration is required", nil)
	}

	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, newError(ErrCodeInvalidDuration, "duration must be in HH:MM:SS format", nil)
	}

	var fields [3]int64
	for i, part := range parts {
		if !isDigits(part) {
			return 0, newError(ErrCodeInvalidDuration, fmt.Sprintf("invalid duration component %q", part), nil)
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil || (i == 0 && n > maxHours) {
			return 0, newError(ErrCodeInvalidDuration, "duration too large", err)
		}
		fields[i] = n
	}

	hours, minutes, seconds := fields[0], fields[1], fields[2]
	if minutes >= 60 || seconds >= 60 {
		return 0, newError(ErrCodeInvalidDuration, "minutes and seconds must be below 60", nil)
	}

	d := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second
	if d <= 0 {
		return 0, newError(ErrCodeInvalidDuration, "duration must be greater than zero", nil)
	}
	return d, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatDuration renders d as H:MM:SS.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", total/3600, (total/60)%60, total%60)
}
