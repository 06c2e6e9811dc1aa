// Package dashboard holds the UI-independent state of the dashboard: load
// generations, the notification banner and the add-transaction form.
package dashboard

// LoadTracker stamps each load cycle with a generation so that a slow, stale
// response can never overwrite state applied from a newer one.
// The zero value is ready to use. It is not safe for concurrent use.
type LoadTracker struct {
	issued  uint64
	applied uint64
}

// Begin starts a new load cycle and returns its generation.
func (t *LoadTracker) Begin() uint64 {
	t.issued++
	return t.issued
}

// Accept reports whether a successful result from gen may be applied, and
// records it as applied if so. Results older than the last applied one are rejected.
func (t *LoadTracker) Accept(gen uint64) bool {
	if gen == 0 || gen <= t.applied || gen > t.issued {
		return false
	}
	t.applied = gen
	return true
}

// IsLatest reports whether gen is the most recently started cycle.
func (t *LoadTracker) IsLatest(gen uint64) bool {
	return gen == t.issued
}

// Applied returns the generation whose data is currently shown (0 if none).
func (t *LoadTracker) Applied() uint64 {
	return t.applied
}
