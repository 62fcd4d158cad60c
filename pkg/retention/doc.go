// Package retention decides which timestamped records may be discarded under a
// tiered retention policy.
//
// # Policy
//
// A Policy is a set of tiers. Each tier pairs an absolute maximum age with the
// minimum spacing required between retained timestamps of that age:
//
//	policy, err := retention.NewPolicy(
//	    retention.Tier{MaxAge: 14 * retention.Day, MinSpacing: time.Hour},
//	    retention.Tier{MaxAge: 28 * retention.Day, MinSpacing: retention.Day},
//	    retention.Tier{MaxAge: 90 * retention.Day, MinSpacing: 7 * retention.Day},
//	)
//
// Tier boundaries are absolute, not cumulative: a record that is 20 days old
// falls into the 28 day tier above. Records older than the largest MaxAge (the
// horizon) are always discarded.
//
// # Filtering
//
// ComputeRetention walks the timestamps oldest first and keeps a timestamp
// when it is more than the applicable spacing newer than the last kept one:
//
//	result, err := retention.ComputeRetention(policy, timestamps, now)
//	if err != nil {
//	    return err // always an *InvalidPolicyError
//	}
//	for _, t := range result.Discard {
//	    fmt.Println(t)
//	}
//
// The oldest timestamp inside the horizon is always kept. Gaps equal to the
// spacing are discarded.
//
// # Safety
//
// CheckSafety reports whether a result discards suspiciously much. It never
// changes the result; callers decide whether to abort or force.
//
// All functions in this package are pure and safe for concurrent use.
package retention
