package buildsignals

import "time"

// NodeDuration pairs the user-visible duration of a key's evaluation
// with its total (wall-clock, including waiting on e.g. a remote
// execution queue) duration. Analysis and load evaluations report a
// single duration for both; action executions report them
// independently (see Open Questions in DESIGN.md).
type NodeDuration struct {
	User  time.Duration
	Total time.Duration
}

// ZeroDuration is the default NodeDuration assigned to cached or
// not-run evaluations.
var ZeroDuration = NodeDuration{}

// CriticalPathDuration returns the duration this node contributes to
// the critical path. Total is used when available; since a zero-valued
// NodeDuration has Total == User == 0, this never needs a presence
// check of its own.
func (d NodeDuration) CriticalPathDuration() time.Duration {
	return d.Total
}

// saturatingSub returns a-b, clamped to zero instead of going negative.
// Mirrors Rust's Duration::saturating_sub, used when recovering a
// node's own contribution from two cumulative critical-path durations.
func saturatingSub(a, b time.Duration) time.Duration {
	if b >= a {
		return 0
	}
	return a - b
}
