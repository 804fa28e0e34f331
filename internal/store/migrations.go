package store

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// migrations are applied in order on startup. Statements must be idempotent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('guru', 'murid')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id BIGSERIAL PRIMARY KEY,
		sender_id UUID NOT NULL REFERENCES users(id),
		receiver_id UUID NOT NULL REFERENCES users(id),
		body TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (sender_id <> receiver_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_pair
		ON messages (sender_id, receiver_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_unread
		ON messages (receiver_id) WHERE NOT is_read`,
	`CREATE TABLE IF NOT EXISTS rooms (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		join_code TEXT UNIQUE NOT NULL,
		teacher_id UUID NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS room_members (
		room_id UUID NOT NULL REFERENCES rooms(id),
		user_id UUID NOT NULL REFERENCES users(id),
		joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (room_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS letter_progress (
		user_id UUID NOT NULL REFERENCES users(id),
		letter TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('belum', 'belajar', 'selesai')),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, letter)
	)`,
	`CREATE TABLE IF NOT EXISTS test_scores (
		user_id UUID NOT NULL REFERENCES users(id),
		letter TEXT NOT NULL,
		score INT NOT NULL CHECK (score BETWEEN 0 AND 100),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, letter)
	)`,
}

// RunMigrations applies the schema to a PostgreSQL database.
func RunMigrations(databaseURL string) error {
	ctx := context.Background()

	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	for _, stmt := range migrations {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
