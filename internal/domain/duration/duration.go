// Package duration converts lap and qualifying time text into seconds.
//
// Accepted inputs: plain seconds ("91.234"), clock forms ("1:31.234",
// "00:01:31.234"), pandas timedelta text ("0 days 00:01:31.234000") and Go
// duration strings ("1m31.234s"). Anything else is missing (NaN); parsing never
// fails loudly.
package duration

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
	secondsPerDay    = 86400
)

// missingTokens are spellings of "no value" written by common table tools.
var missingTokens = map[string]struct{}{ //nolint:gochecknoglobals // read-only lookup
	"":      {},
	"nan":   {},
	"nat":   {},
	"na":    {},
	"n/a":   {},
	"none":  {},
	"null":  {},
	"<nil>": {},
}

// IsBlank reports whether raw spells a missing value.
func IsBlank(raw string) bool {
	_, ok := missingTokens[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// Seconds parses raw into seconds. ok is false for blank or unparseable input,
// in which case the returned value is NaN.
func Seconds(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if IsBlank(s) {
		return math.NaN(), false
	}

	v, ok := parse(s)
	if !ok || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return math.NaN(), false
	}
	return v, true
}

func parse(s string) (float64, bool) {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}

	if days, rest, ok := splitDays(s); ok {
		clock, ok := parseClock(rest)
		if !ok {
			return 0, false
		}
		return float64(days)*secondsPerDay + clock, true
	}

	if strings.Contains(s, ":") {
		return parseClock(s)
	}

	if d, err := time.ParseDuration(s); err == nil {
		return d.Seconds(), true
	}
	return 0, false
}

// splitDays handles the "N days HH:MM:SS" prefix.
func splitDays(s string) (int, string, bool) {
	fields := strings.Fields(s)
	if len(fields) != 3 || (fields[1] != "days" && fields[1] != "day") {
		return 0, "", false
	}
	days, err := strconv.Atoi(fields[0])
	if err != nil || days < 0 {
		return 0, "", false
	}
	return days, fields[2], true
}

// parseClock handles "M:SS.fff" and "H:MM:SS.fff".
func parseClock(s string) (float64, bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}

	secs, err := strconv.ParseFloat(parts[len(parts)-1], 64)
	if err != nil || secs < 0 || secs >= secondsPerMinute {
		return 0, false
	}

	mins, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil || mins < 0 {
		return 0, false
	}

	total := float64(mins)*secondsPerMinute + secs
	if len(parts) == 3 {
		if mins >= secondsPerMinute {
			return 0, false
		}
		hours, err := strconv.Atoi(parts[0])
		if err != nil || hours < 0 {
			return 0, false
		}
		total += float64(hours) * secondsPerHour
	}
	return total, true
}

// Column normalizes a whole column. failures counts non-blank values that
// could not be parsed; blanks are missing but not failures.
func Column(values []string) (out []float64, failures int) {
	out = make([]float64, len(values))
	for i, raw := range values {
		v, ok := Seconds(raw)
		out[i] = v
		if !ok && !IsBlank(raw) {
			failures++
		}
	}
	return out, failures
}

// Format renders seconds for output tables; missing values render empty.
func Format(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Clock renders seconds as timedelta text, e.g. "0 days 00:01:31.234000";
// missing values render empty.
func Clock(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return ""
	}
	us := int64(math.Round(v * 1e6))
	days := us / (secondsPerDay * 1e6)
	us -= days * secondsPerDay * 1e6
	h := us / (secondsPerHour * 1e6)
	us -= h * secondsPerHour * 1e6
	m := us / (secondsPerMinute * 1e6)
	us -= m * secondsPerMinute * 1e6
	return fmt.Sprintf("%d days %02d:%02d:%02d.%06d", days, h, m, us/1e6, us%1e6)
}
