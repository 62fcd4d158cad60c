package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	day  = 24 * time.Hour
	week = 7 * day
)

// Duration is a time.Duration that accepts day and week units in YAML.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String formats the duration with FormatDuration.
func (d Duration) String() string {
	return FormatDuration(time.Duration(d))
}

// UnmarshalYAML parses a scalar with ParseDuration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", value.Line)
	}
	parsed, err := ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration in FormatDuration form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return FormatDuration(time.Duration(d)), nil
}

// ParseDuration parses a duration string. In addition to the units accepted
// by time.ParseDuration it understands "d" (24h) and "w" (7d). Units may be
// combined: "1w2d", "1d12h30m". A bare "0" is zero.
func ParseDuration(s string) (time.Duration, error) {
	orig := s
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("invalid duration %q: empty", orig)
	}

	neg := false
	if s[0] == '-' || s[0] == '+' {
		neg = s[0] == '-'
		s = s[1:]
	}
	if s == "" {
		return 0, fmt.Errorf("invalid duration %q: expected number", orig)
	}
	if s == "0" {
		return 0, nil
	}

	var total time.Duration
	var rest strings.Builder
	for s != "" {
		i := 0
		for i < len(s) && (s[i] == '.' || ('0' <= s[i] && s[i] <= '9')) {
			i++
		}
		if i == 0 {
			return 0, fmt.Errorf("invalid duration %q: expected number", orig)
		}
		number := s[:i]
		s = s[i:]

		j := 0
		for j < len(s) && s[j] != '.' && (s[j] < '0' || s[j] > '9') {
			j++
		}
		unit := s[:j]
		s = s[j:]

		switch unit {
		case "d", "w":
			n, err := strconv.ParseFloat(number, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid duration %q: %w", orig, err)
			}
			scale := day
			if unit == "w" {
				scale = week
			}
			total += time.Duration(n * float64(scale))
		case "":
			return 0, fmt.Errorf("invalid duration %q: missing unit", orig)
		default:
			rest.WriteString(number)
			rest.WriteString(unit)
		}
	}

	if rest.Len() > 0 {
		d, err := time.ParseDuration(rest.String())
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", orig, err)
		}
		total += d
	}

	if neg {
		total = -total
	}
	return total, nil
}

// FormatDuration renders d using the largest fitting units, e.g. "2w",
// "1d12h", "90m" is rendered "1h30m". Sub-second parts use time.Duration
// formatting.
func FormatDuration(d time.Duration) string {
	if d == 0 {
		return "0s"
	}

	var sb strings.Builder
	if d < 0 {
		sb.WriteByte('-')
		d = -d
	}

	units := []struct {
		suffix string
		size   time.Duration
	}{
		{"w", week},
		{"d", day},
		{"h", time.Hour},
		{"m", time.Minute},
		{"s", time.Second},
	}
	for _, u := range units {
		if d >= u.size {
			fmt.Fprintf(&sb, "%d%s", d/u.size, u.suffix)
			d %= u.size
		}
	}
	if d > 0 {
		sb.WriteString(d.String())
	}

	return sb.String()
}
