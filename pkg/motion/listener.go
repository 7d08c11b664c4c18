package motion

import (
	"sync"
	"weak"
)

// ViewListener receives playback notifications from a [View]. Any subset of
// the handlers may be nil; nil handlers are skipped.
//
// The view holds listeners weakly. Callers must keep their own reference to
// a registered listener for as long as they want notifications; a listener
// that becomes unreachable is dropped silently.
type ViewListener struct {
	// OnStart fires when playback begins.
	OnStart func()
	// OnEnd fires when playback completes its final loop.
	OnEnd func()
	// OnRepeat fires each time playback wraps around for another loop.
	OnRepeat func()
	// OnCancel fires when playback is interrupted before completing.
	OnCancel func()
	// OnUpdate fires periodically with the current progress in [0, 1].
	OnUpdate func(progress float64)
}

// listenerSet tracks registered listeners in registration order without
// keeping them alive.
type listenerSet struct {
	mu      sync.Mutex
	entries []weak.Pointer[ViewListener]
}

func (s *listenerSet) add(l *ViewListener) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, weak.Make(l))
}

// remove drops the first registration of l. Remaining registrations of the
// same listener, if any, stay in place.
func (s *listenerSet) remove(l *ViewListener) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	target := weak.Make(l)
	for i, entry := range s.entries {
		if entry == target {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

// snapshot returns the current registrations in order. Notification loops
// iterate the snapshot, so changes made mid-notification take effect from
// the next notification onward.
func (s *listenerSet) snapshot() []weak.Pointer[ViewListener] {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]weak.Pointer[ViewListener], len(s.entries))
	copy(out, s.entries)
	return out
}

// each invokes fn for every listener that is still reachable, in
// registration order. Collected listeners are skipped without compacting
// the set.
func (s *listenerSet) each(fn func(*ViewListener)) {
	for _, entry := range s.snapshot() {
		if l := entry.Value(); l != nil {
			fn(l)
		}
	}
}
