package memory

import (
	"context"
	"sync"

	"trivia-game-service/internal/domain"
)

// ScoreLedger is the in-memory scoring authority. Streaks are signed:
// a win after a win increments, a win after a loss (or no history)
// resets to +1, symmetric for losses.
type ScoreLedger struct {
	mu      sync.Mutex
	records map[string]map[string]*domain.ScoreRecord // channel -> user -> record
}

func NewScoreLedger() *ScoreLedger {
	return &ScoreLedger{records: make(map[string]map[string]*domain.ScoreRecord)}
}

func (l *ScoreLedger) RecordWin(_ context.Context, channel, userID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec := l.recordFor(channel, userID)
	rec.Wins++
	if rec.Streak > 0 {
		rec.Streak++
	} else {
		rec.Streak = 1
	}
	return rec.Streak, nil
}

func (l *ScoreLedger) RecordLoss(_ context.Context, channel, userID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec := l.recordFor(channel, userID)
	rec.Losses++
	if rec.Streak < 0 {
		rec.Streak--
	} else {
		rec.Streak = -1
	}
	return rec.Streak, nil
}

func (l *ScoreLedger) GetScore(_ context.Context, channel, userID string) (domain.ScoreRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if rec, ok := l.records[channel][userID]; ok {
		return *rec, nil
	}
	return domain.ScoreRecord{}, nil
}

func (l *ScoreLedger) recordFor(channel, userID string) *domain.ScoreRecord {
	if l.records[channel] == nil {
		l.records[channel] = make(map[string]*domain.ScoreRecord)
	}
	rec, ok := l.records[channel][userID]
	if !ok {
		rec = &domain.ScoreRecord{}
		l.records[channel][userID] = rec
	}
	return rec
}
