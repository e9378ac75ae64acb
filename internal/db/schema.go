package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the two tables on boot if they are missing. Deleting
// a user must delete their notes, hence the cascading foreign key.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id            UUID PRIMARY KEY,
			username      VARCHAR(20)  NOT NULL UNIQUE,
			full_name     VARCHAR(50)  NOT NULL,
			email         VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			created_at    TIMESTAMPTZ  NOT NULL,
			updated_at    TIMESTAMPTZ  NOT NULL
		)
	`)

	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS notes (
			id         UUID PRIMARY KEY,
			title      VARCHAR(255) NOT NULL,
			content    TEXT         NOT NULL DEFAULT '',
			user_id    UUID         NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ  NOT NULL,
			updated_at TIMESTAMPTZ  NOT NULL
		)
	`)

	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS notes_user_id_idx ON notes (user_id)`)

	return err
}
