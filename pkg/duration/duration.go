// Package duration converts between the display form durations are stored in
// ("3:24", "1:02:03") and whole seconds, and parses the ISO 8601 periods the
// YouTube API reports ("PT3M24S").
package duration

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BrianHicks/finch/duration"
	"github.com/pkg/errors"
)

// ParseDisplay returns the total seconds of an "M:SS" or "H:MM:SS" string.
// Unparseable input yields 0 so that ranking degrades instead of failing.
func ParseDisplay(s string) int {
	fields := strings.Split(s, ":")
	if len(fields) < 2 || len(fields) > 3 {
		return 0
	}

	total := 0
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}

	return total
}

// FromISO8601 parses a period like "PT3M24S" into total seconds.
func FromISO8601(s string) (int, error) {
	d, err := duration.FromString(s)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to parse duration %s", s)
	}

	return int(d.ToDuration().Seconds()), nil
}

// FormatSeconds renders seconds in the display form, dropping the hours field
// when it would be zero.
func FormatSeconds(total int) string {
	if total < 0 {
		total = 0
	}

	hours := total / 3600
	minutes := total % 3600 / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}

	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
