package app

import (
	"math/rand"
	"sync"
	"time"

	"trivia-game-service/internal/domain"
)

// SpecialRoller decides whether a new game carries a shiny or toxic
// modifier. Shiny is capped per channel within a rolling window to
// prevent reward inflation; shiny wins when both would trigger.
type SpecialRoller struct {
	shinyProbability float64
	toxicProbability float64
	shinyCap         int
	window           time.Duration

	mu        sync.Mutex
	shinyLog  map[string][]time.Time
	now       func() time.Time
	randFloat func() float64
}

func NewSpecialRoller(shinyProbability, toxicProbability float64, shinyCap int, window time.Duration) *SpecialRoller {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	var rndMu sync.Mutex
	return &SpecialRoller{
		shinyProbability: shinyProbability,
		toxicProbability: toxicProbability,
		shinyCap:         shinyCap,
		window:           window,
		shinyLog:         make(map[string][]time.Time),
		now:              time.Now,
		randFloat: func() float64 {
			rndMu.Lock()
			defer rndMu.Unlock()
			return rnd.Float64()
		},
	}
}

// Roll draws the special status for one new game in a channel.
func (r *SpecialRoller) Roll(channel string) domain.SpecialStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.randFloat() < r.shinyProbability && r.shinyCountLocked(channel, now) < r.shinyCap {
		r.shinyLog[channel] = append(r.shinyLog[channel], now)
		return domain.SpecialShiny
	}
	if r.randFloat() < r.toxicProbability {
		return domain.SpecialToxic
	}
	return domain.SpecialNone
}

func (r *SpecialRoller) shinyCountLocked(channel string, now time.Time) int {
	cutoff := now.Add(-r.window)
	log := r.shinyLog[channel]
	kept := log[:0]
	for _, t := range log {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	r.shinyLog[channel] = kept
	return len(kept)
}
