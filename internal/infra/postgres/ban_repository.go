package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// BanRepository owns the banned-question table. It backs the redis ban
// cache in multi-instance deploys and can serve as the BanStore
// directly when no cache is configured.
type BanRepository struct {
	pool *pgxpool.Pool
}

func NewBanRepository(pool *pgxpool.Pool) *BanRepository {
	return &BanRepository{pool: pool}
}

func (r *BanRepository) IsBanned(ctx context.Context, questionID, source string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM trivia_bans WHERE question_id=$1 AND source=$2)`,
		questionID, source).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ban lookup: %w", err)
	}
	return exists, nil
}

func (r *BanRepository) Ban(ctx context.Context, questionID, source string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO trivia_bans (question_id, source) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		questionID, source)
	if err != nil {
		return fmt.Errorf("ban question: %w", err)
	}
	return nil
}

func (r *BanRepository) Unban(ctx context.Context, questionID, source string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM trivia_bans WHERE question_id=$1 AND source=$2`,
		questionID, source)
	if err != nil {
		return fmt.Errorf("unban question: %w", err)
	}
	return nil
}

func (r *BanRepository) ListBanned(ctx context.Context, source string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT question_id FROM trivia_bans WHERE source=$1`, source)
	if err != nil {
		return nil, fmt.Errorf("list bans: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan ban: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
