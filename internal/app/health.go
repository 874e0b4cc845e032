package app

import (
	"sync"
	"time"
)

// SourceHealthTracker records per-source fetch outcomes and derives a
// degraded signal from recent history. A source is degraded after
// `threshold` consecutive failures landing within the rolling window;
// any success clears the streak. Safe for concurrent per-key access.
type SourceHealthTracker struct {
	threshold int
	window    time.Duration

	mu    sync.Mutex
	state map[string]*sourceHealth
	now   func() time.Time
}

type sourceHealth struct {
	consecutive int
	failures    []time.Time
	lastFailure time.Time
}

func NewSourceHealthTracker(threshold int, window time.Duration) *SourceHealthTracker {
	return &SourceHealthTracker{
		threshold: threshold,
		window:    window,
		state:     make(map[string]*sourceHealth),
		now:       time.Now,
	}
}

func (t *SourceHealthTracker) RecordFailure(source string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h := t.stateFor(source)
	now := t.now()
	h.consecutive++
	h.lastFailure = now
	h.failures = append(h.failures, now)
	t.pruneLocked(h, now)
}

func (t *SourceHealthTracker) RecordSuccess(source string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stateFor(source).consecutive = 0
}

// IsDegraded reports whether the source should be skipped when
// building the sourcing candidate list.
func (t *SourceHealthTracker) IsDegraded(source string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.state[source]
	if !ok {
		return false
	}
	if h.consecutive < t.threshold {
		return false
	}
	return t.now().Sub(h.lastFailure) <= t.window
}

// FailureCount returns the number of failures within the window.
func (t *SourceHealthTracker) FailureCount(source string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.state[source]
	if !ok {
		return 0
	}
	t.pruneLocked(h, t.now())
	return len(h.failures)
}

func (t *SourceHealthTracker) stateFor(source string) *sourceHealth {
	h, ok := t.state[source]
	if !ok {
		h = &sourceHealth{}
		t.state[source] = h
	}
	return h
}

func (t *SourceHealthTracker) pruneLocked(h *sourceHealth, now time.Time) {
	cutoff := now.Add(-t.window)
	kept := h.failures[:0]
	for _, ts := range h.failures {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	h.failures = kept
}
