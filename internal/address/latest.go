package address

import "sync/atomic"

// Latest is a stale-response guard for a cascade of lookups. Each new
// request takes a ticket; a response is only accepted if its ticket is
// still the newest, so a slow district fetch that resolves after the user
// re-picked a province is discarded instead of clobbering fresher results.
type Latest struct {
	seq atomic.Uint64
}

// Ticket registers a new request and supersedes all earlier ones.
func (l *Latest) Ticket() uint64 {
	return l.seq.Add(1)
}

// Current reports whether the ticket is still the newest.
func (l *Latest) Current(t uint64) bool {
	return l.seq.Load() == t
}
