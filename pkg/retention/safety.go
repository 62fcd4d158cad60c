package retention

// CheckSafety reports whether applying a result is safe. It returns false
// only when something would be discarded, more would be discarded than kept,
// and fewer than minKeep would be kept. A minKeep of zero or less disables the
// guard.
//
// The check is advisory; it never alters a Result.
func CheckSafety(keepCount, discardCount, minKeep int) bool {
	if discardCount == 0 {
		return true
	}
	if discardCount <= keepCount {
		return true
	}
	return keepCount >= minKeep
}

// Safe reports whether r passes CheckSafety for minKeep.
func (r *Result) Safe(minKeep int) bool {
	kept, discarded := r.Counts()
	return CheckSafety(kept, discarded, minKeep)
}
