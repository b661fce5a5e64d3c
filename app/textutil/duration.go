package textutil

import (
	"regexp"
	"strconv"
)

// Matches ISO-8601 durations as used by video platforms: optional days,
// optional time block with hours/minutes/seconds. Weeks, months and years
// are not produced by the sources this pipeline reads.
var isoDurationRe = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseISODuration converts an ISO-8601 duration string (e.g. "PT1H2M3S",
// "P1DT") to total seconds. All-empty forms like "P" and "PT" are valid zero
// durations. Returns ok=false for strings that do not start with the duration
// marker, contain non-numeric garbage, or compute to a negative value.
func ParseISODuration(s string) (int, bool) {
	match := isoDurationRe.FindStringSubmatch(s)
	if match == nil {
		return 0, false
	}

	days := atoiDefault(match[1])
	hours := atoiDefault(match[2])
	minutes := atoiDefault(match[3])
	seconds := atoiDefault(match[4])

	total := ((days*24+hours)*60+minutes)*60 + seconds
	if total < 0 {
		// Overflow from absurdly large components.
		return 0, false
	}

	return total, true
}

func atoiDefault(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
