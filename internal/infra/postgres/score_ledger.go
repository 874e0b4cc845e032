package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-game-service/internal/domain"
)

// ScoreLedger persists win/loss records and streaks in Postgres. Each
// write is a single upsert so the streak transition is atomic.
type ScoreLedger struct {
	pool *pgxpool.Pool
}

func NewScoreLedger(pool *pgxpool.Pool) *ScoreLedger {
	return &ScoreLedger{pool: pool}
}

func (l *ScoreLedger) RecordWin(ctx context.Context, channel, userID string) (int, error) {
	var streak int
	err := l.pool.QueryRow(ctx, `
		INSERT INTO trivia_scores (channel, user_id, wins, losses, streak)
		VALUES ($1, $2, 1, 0, 1)
		ON CONFLICT (channel, user_id) DO UPDATE SET
			wins = trivia_scores.wins + 1,
			streak = CASE WHEN trivia_scores.streak > 0 THEN trivia_scores.streak + 1 ELSE 1 END
		RETURNING streak`, channel, userID).Scan(&streak)
	if err != nil {
		return 0, fmt.Errorf("record win: %w", err)
	}
	return streak, nil
}

func (l *ScoreLedger) RecordLoss(ctx context.Context, channel, userID string) (int, error) {
	var streak int
	err := l.pool.QueryRow(ctx, `
		INSERT INTO trivia_scores (channel, user_id, wins, losses, streak)
		VALUES ($1, $2, 0, 1, -1)
		ON CONFLICT (channel, user_id) DO UPDATE SET
			losses = trivia_scores.losses + 1,
			streak = CASE WHEN trivia_scores.streak < 0 THEN trivia_scores.streak - 1 ELSE -1 END
		RETURNING streak`, channel, userID).Scan(&streak)
	if err != nil {
		return 0, fmt.Errorf("record loss: %w", err)
	}
	return streak, nil
}

func (l *ScoreLedger) GetScore(ctx context.Context, channel, userID string) (domain.ScoreRecord, error) {
	var rec domain.ScoreRecord
	err := l.pool.QueryRow(ctx,
		`SELECT wins, losses, streak FROM trivia_scores WHERE channel=$1 AND user_id=$2`,
		channel, userID).Scan(&rec.Wins, &rec.Losses, &rec.Streak)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ScoreRecord{}, nil
		}
		return domain.ScoreRecord{}, fmt.Errorf("get score: %w", err)
	}
	return rec, nil
}
