// Package flexduration parses the handful of duration notations a CLI user
// is likely to type, adapted from the teacher's pkg/schemas.Duration (which
// used the same parsing to accept "--timeout" style job fields in JSON).
package flexduration

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var timecodeRE = regexp.MustCompile(`^(\d{1,2}):(\d{2}):(\d{2})(?:\.(\d{1,3}))?$`)
var iso8601RE = regexp.MustCompile(`(\d+)([HMS])`)

// Parse accepts a Go duration ("90s", "1h30m"), a timecode ("01:30:00" or
// "00:05:30.500"), or an ISO 8601 duration ("PT1H30M").
func Parse(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	if d, err := parseTimecode(s); err == nil {
		return d, nil
	}
	if strings.HasPrefix(s, "PT") {
		return parseISO8601(s)
	}

	return 0, fmt.Errorf("flexduration: invalid duration %q", s)
}

func parseTimecode(s string) (time.Duration, error) {
	m := timecodeRE.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("flexduration: not a timecode")
	}

	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	d := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second

	if m[4] != "" {
		ms := m[4]
		for len(ms) < 3 {
			ms += "0"
		}
		millis, _ := strconv.Atoi(ms)
		d += time.Duration(millis) * time.Millisecond
	}

	return d, nil
}

func parseISO8601(s string) (time.Duration, error) {
	s = s[len("PT"):]
	var d time.Duration
	for _, m := range iso8601RE.FindAllStringSubmatch(s, -1) {
		value, _ := strconv.Atoi(m[1])
		switch m[2] {
		case "H":
			d += time.Duration(value) * time.Hour
		case "M":
			d += time.Duration(value) * time.Minute
		case "S":
			d += time.Duration(value) * time.Second
		}
	}
	return d, nil
}
