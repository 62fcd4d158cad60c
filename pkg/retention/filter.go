package retention

import (
	"slices"
	"sort"
	"time"
)

// Reason explains a single keep or discard decision.
type Reason string

const (
	// ReasonAnchor marks the oldest timestamp inside the horizon.
	ReasonAnchor Reason = "anchor"
	// ReasonSpaced marks a timestamp kept because it is far enough from the
	// previously kept one.
	ReasonSpaced Reason = "spaced"
	// ReasonTooClose marks a timestamp discarded because it is within the
	// tier spacing of the previously kept one.
	ReasonTooClose Reason = "too_close"
	// ReasonBeyondHorizon marks a timestamp older than every tier.
	ReasonBeyondHorizon Reason = "beyond_horizon"
)

// Decision records how the filter classified one timestamp.
type Decision struct {
	Time time.Time

	// Age is now minus Time, clamped at zero for timestamps from the future.
	Age time.Duration

	// Tier is the index of the applicable tier in ascending MaxAge order,
	// or -1 when the timestamp is beyond the horizon.
	Tier int

	// Spacing is the MinSpacing of the applicable tier.
	Spacing time.Duration

	// Gap is the distance to the previously kept timestamp. It is zero for
	// the anchor and for timestamps beyond the horizon.
	Gap time.Duration

	Kept   bool
	Reason Reason
}

// Result is the keep/discard partition produced by ComputeRetention.
// Keep and Discard are disjoint, sorted ascending, and together contain
// every input timestamp.
type Result struct {
	Keep    []time.Time
	Discard []time.Time

	// Decisions holds one entry per input timestamp, oldest first.
	Decisions []Decision

	// Now is the reference instant the ages were computed against.
	Now time.Time
}

// IsKept reports whether t is in the keep-set.
func (r *Result) IsKept(t time.Time) bool {
	i := sort.Search(len(r.Keep), func(i int) bool {
		return !r.Keep[i].Before(t)
	})
	return i < len(r.Keep) && r.Keep[i].Equal(t)
}

// Counts returns the sizes of the keep-set and discard-set.
func (r *Result) Counts() (kept, discarded int) {
	return len(r.Keep), len(r.Discard)
}

// ComputeRetention partitions timestamps into a keep-set and a discard-set.
//
// The timestamps are walked oldest first. A timestamp whose age has no
// applicable tier is discarded. Otherwise it is kept when it lies strictly
// more than the tier's MinSpacing after the last kept timestamp; the first
// timestamp inside the horizon has no predecessor and is always kept.
//
// The caller owns timestamps; the slice is not modified. The timestamps are
// expected to be distinct. now is used for every age computation of the call.
// The only error is an *InvalidPolicyError for a nil policy.
func ComputeRetention(policy *Policy, timestamps []time.Time, now time.Time) (*Result, error) {
	if policy == nil || len(policy.tiers) == 0 {
		return nil, newInvalidPolicyError(-1, "no policy given")
	}

	sorted := slices.Clone(timestamps)
	slices.SortFunc(sorted, func(a, b time.Time) int {
		return a.Compare(b)
	})

	result := &Result{
		Keep:      make([]time.Time, 0, len(sorted)),
		Discard:   make([]time.Time, 0),
		Decisions: make([]Decision, 0, len(sorted)),
		Now:       now,
	}

	var (
		lastKept time.Time
		haveKept bool
	)
	for _, d := range sorted {
		age := now.Sub(d)
		if age < 0 {
			age = 0
		}

		decision := Decision{Time: d, Age: age, Tier: policy.tierIndex(age)}
		if decision.Tier < 0 {
			decision.Reason = ReasonBeyondHorizon
			result.Discard = append(result.Discard, d)
			result.Decisions = append(result.Decisions, decision)
			continue
		}
		decision.Spacing = policy.tiers[decision.Tier].MinSpacing

		switch {
		case !haveKept:
			decision.Kept = true
			decision.Reason = ReasonAnchor
		default:
			decision.Gap = d.Sub(lastKept)
			if decision.Gap > decision.Spacing {
				decision.Kept = true
				decision.Reason = ReasonSpaced
			} else {
				decision.Reason = ReasonTooClose
			}
		}

		if decision.Kept {
			lastKept = d
			haveKept = true
			result.Keep = append(result.Keep, d)
		} else {
			result.Discard = append(result.Discard, d)
		}
		result.Decisions = append(result.Decisions, decision)
	}

	return result, nil
}
