package retention

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Convenience units for tier definitions. They are fixed-length and ignore
// calendar effects such as daylight saving transitions.
const (
	Day  = 24 * time.Hour
	Week = 7 * Day
)

// Tier is a single retention rule: timestamps younger than MaxAge must be
// spaced at least MinSpacing apart in the retained set.
type Tier struct {
	// MaxAge is the absolute age boundary of the tier. A timestamp belongs
	// to the tier with the smallest MaxAge strictly greater than its age.
	MaxAge time.Duration

	// MinSpacing is the minimum distance between two retained timestamps
	// of this tier. Retained timestamps are always strictly further apart.
	MinSpacing time.Duration
}

// String returns the tier as "maxAge:minSpacing".
func (t Tier) String() string {
	return fmt.Sprintf("%s:%s", t.MaxAge, t.MinSpacing)
}

// Policy is a validated set of tiers sorted ascending by MaxAge.
// A Policy is immutable after construction.
type Policy struct {
	tiers []Tier
}

// Validate checks a tier set without modifying it. It returns an
// *InvalidPolicyError when the set is empty, a tier has a non-positive
// MaxAge or MinSpacing, or two tiers share the same MaxAge.
func Validate(tiers []Tier) error {
	if len(tiers) == 0 {
		return newInvalidPolicyError(-1, "no tiers defined")
	}

	seen := make(map[time.Duration]int, len(tiers))
	for i, tier := range tiers {
		if tier.MaxAge <= 0 {
			return newInvalidPolicyError(i, "max age must be positive, got %s", tier.MaxAge)
		}
		if tier.MinSpacing <= 0 {
			return newInvalidPolicyError(i, "min spacing must be positive, got %s", tier.MinSpacing)
		}
		if prev, ok := seen[tier.MaxAge]; ok {
			return newInvalidPolicyError(i, "max age %s already used by tier %d", tier.MaxAge, prev)
		}
		seen[tier.MaxAge] = i
	}

	return nil
}

// NewPolicy validates the tiers and returns a Policy holding a sorted copy.
// The caller's slice is neither retained nor reordered.
func NewPolicy(tiers ...Tier) (*Policy, error) {
	if err := Validate(tiers); err != nil {
		return nil, err
	}

	sorted := slices.Clone(tiers)
	slices.SortFunc(sorted, func(a, b Tier) int {
		return compareDurations(a.MaxAge, b.MaxAge)
	})

	return &Policy{tiers: sorted}, nil
}

// MustPolicy is like NewPolicy but panics on an invalid tier set.
// It is intended for package-level defaults and tests.
func MustPolicy(tiers ...Tier) *Policy {
	p, err := NewPolicy(tiers...)
	if err != nil {
		panic(err)
	}
	return p
}

// Lookup returns the MinSpacing of the tier with the smallest MaxAge strictly
// greater than age. The boolean is false when age is at or beyond the horizon.
func (p *Policy) Lookup(age time.Duration) (time.Duration, bool) {
	i := p.tierIndex(age)
	if i < 0 {
		return 0, false
	}
	return p.tiers[i].MinSpacing, true
}

// tierIndex returns the index of the tier applicable to age, or -1.
func (p *Policy) tierIndex(age time.Duration) int {
	for i, tier := range p.tiers {
		if tier.MaxAge > age {
			return i
		}
	}
	return -1
}

// Horizon returns the largest MaxAge in the policy, or 0 for a policy
// without tiers.
func (p *Policy) Horizon() time.Duration {
	if len(p.tiers) == 0 {
		return 0
	}
	return p.tiers[len(p.tiers)-1].MaxAge
}

// Tiers returns a copy of the tiers in ascending MaxAge order.
func (p *Policy) Tiers() []Tier {
	return slices.Clone(p.tiers)
}

// Len returns the number of tiers.
func (p *Policy) Len() int {
	return len(p.tiers)
}

// String returns the tiers joined by commas, e.g. "336h0m0s:1h0m0s,...".
func (p *Policy) String() string {
	parts := make([]string, len(p.tiers))
	for i, tier := range p.tiers {
		parts[i] = tier.String()
	}
	return strings.Join(parts, ",")
}

func compareDurations(a, b time.Duration) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
