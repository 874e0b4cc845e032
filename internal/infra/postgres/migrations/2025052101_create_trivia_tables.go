package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

var Migrations = migrate.NewMigrations()

const createTriviaTablesSQL = `
CREATE TABLE IF NOT EXISTS trivia_scores (
	channel  TEXT NOT NULL,
	user_id  TEXT NOT NULL,
	wins     INTEGER NOT NULL DEFAULT 0,
	losses   INTEGER NOT NULL DEFAULT 0,
	streak   INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (channel, user_id)
);

CREATE TABLE IF NOT EXISTS trivia_bans (
	question_id TEXT NOT NULL,
	source      TEXT NOT NULL,
	banned_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (question_id, source)
);
`

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, createTriviaTablesSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS trivia_bans; DROP TABLE IF EXISTS trivia_scores`)
			return err
		},
	)
}
