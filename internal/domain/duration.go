package domain

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrBadDuration signals an unparseable sanction duration. Callers must reject
// the originating action rather than fall back to a default.
var ErrBadDuration = errors.New("invalid duration format")

var durationRe = regexp.MustCompile(`(?i)^(\d+)\s*(m|h|d|w)?$`)

// ParseDuration parses human sanction durations such as "30m", "2h", "1d" or
// "1w". A bare number defaults to minutes. "0m" is a valid zero-length
// duration.
func ParseDuration(s string) (time.Duration, error) {
	m := durationRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, ErrBadDuration
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, ErrBadDuration
	}
	unit := time.Minute
	switch m[2] {
	case "h", "H":
		unit = time.Hour
	case "d", "D":
		unit = 24 * time.Hour
	case "w", "W":
		unit = 7 * 24 * time.Hour
	}
	return time.Duration(n) * unit, nil
}
