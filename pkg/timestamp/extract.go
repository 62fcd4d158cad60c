package timestamp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultPattern matches dates with an optional time of day in the common
// shapes found in file names: 2024-06-15, 20240615, 2024-06-15T03:00:00Z,
// 2024-06-15_03-00-00, 20240615-030000.
const DefaultPattern = `(?P<year>[0-9]{4})-?(?P<month>[0-9]{2})-?(?P<day>[0-9]{2})` +
	`(?:[T _-]?(?P<hour>[0-9]{2})[:_-]?(?P<minute>[0-9]{2})` +
	`(?:[:_-]?(?P<second>[0-9]{2})(?:\.(?P<frac>[0-9]{1,9}))?)?` +
	`(?P<zone>Z|[+-][0-9]{2}:?[0-9]{2})?)?`

// groups a pattern may define. year, month and day are required.
var requiredGroups = []string{"year", "month", "day"}

// Extractor finds a date-time inside a string.
type Extractor struct {
	patterns []*regexp.Regexp
	location *time.Location
}

// NewExtractor compiles patterns into an Extractor. Each pattern must define
// the named groups year, month and day and may define hour, minute, second,
// frac and zone. Times without a zone are interpreted in loc (UTC when nil).
// With no patterns, DefaultPattern is used.
func NewExtractor(patterns []string, loc *time.Location) (*Extractor, error) {
	if len(patterns) == 0 {
		patterns = []string{DefaultPattern}
	}
	if loc == nil {
		loc = time.UTC
	}

	x := &Extractor{location: loc}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp pattern %q: %w", p, err)
		}
		for _, name := range requiredGroups {
			if re.SubexpIndex(name) < 0 {
				return nil, fmt.Errorf("timestamp pattern %q has no (?P<%s>...) group", p, name)
			}
		}
		x.patterns = append(x.patterns, re)
	}

	return x, nil
}

// DefaultExtractor returns an Extractor using DefaultPattern.
func DefaultExtractor(loc *time.Location) *Extractor {
	x, err := NewExtractor(nil, loc)
	if err != nil {
		panic(err)
	}
	return x
}

// Extract returns the first valid date-time found in s. A string that is a
// complete RFC 3339 timestamp is parsed as such; otherwise the patterns are
// tried in order and the first match describing a real calendar date wins.
func (x *Extractor) Extract(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}

	for _, re := range x.patterns {
		for _, m := range re.FindAllStringSubmatchIndex(s, -1) {
			if t, ok := x.build(re, s, m); ok {
				return t, true
			}
		}
	}

	return time.Time{}, false
}

// build turns a submatch into a time, rejecting impossible dates such as
// 2024-02-30 instead of letting time.Date normalise them.
func (x *Extractor) build(re *regexp.Regexp, s string, m []int) (time.Time, bool) {
	group := func(name string) string {
		i := re.SubexpIndex(name)
		if i < 0 || m[2*i] < 0 {
			return ""
		}
		return s[m[2*i]:m[2*i+1]]
	}
	number := func(name string) int {
		v, err := strconv.Atoi(group(name))
		if err != nil {
			return 0
		}
		return v
	}

	year, month, day := number("year"), number("month"), number("day")
	hour, minute, second := number("hour"), number("minute"), number("second")

	nsec := 0
	if frac := group("frac"); frac != "" {
		frac = (frac + "000000000")[:9]
		nsec, _ = strconv.Atoi(frac)
	}

	loc := x.location
	if zone := group("zone"); zone != "" {
		z, ok := parseZone(zone)
		if !ok {
			return time.Time{}, false
		}
		loc = z
	}

	if month < 1 || month > 12 || day < 1 || hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, nsec, loc)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}

	return t, true
}

// parseZone parses "Z", "+02:00" or "-0130".
func parseZone(zone string) (*time.Location, bool) {
	if zone == "Z" {
		return time.UTC, true
	}

	sign := 1
	if zone[0] == '-' {
		sign = -1
	}
	digits := strings.ReplaceAll(zone[1:], ":", "")
	if len(digits) != 4 {
		return nil, false
	}
	hours, err := strconv.Atoi(digits[:2])
	if err != nil || hours > 14 {
		return nil, false
	}
	minutes, err := strconv.Atoi(digits[2:])
	if err != nil || minutes > 59 {
		return nil, false
	}

	offset := sign * (hours*3600 + minutes*60)
	if offset == 0 {
		return time.UTC, true
	}
	return time.FixedZone(zone, offset), true
}
