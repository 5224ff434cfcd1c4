package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// The unique index skips cancelled rows so a cancelled slot can be booked again,
// while still allowing at most one live reservation per table, date and slot.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS restaurant_tables (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		capacity   INTEGER NOT NULL CHECK (capacity > 0),
		location   TEXT NOT NULL DEFAULT '',
		view       TEXT NOT NULL DEFAULT '',
		image      TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id               TEXT PRIMARY KEY,
		table_id         TEXT NOT NULL REFERENCES restaurant_tables(id),
		user_id          TEXT NOT NULL,
		reservation_date TEXT NOT NULL,
		time_slot        TEXT NOT NULL,
		status           TEXT NOT NULL CHECK (status IN ('PENDING', 'CONFIRMED', 'CANCELLED')),
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS reservations_active_slot_uidx
		ON reservations (table_id, reservation_date, time_slot)
		WHERE status <> 'CANCELLED'`,
	`CREATE INDEX IF NOT EXISTS reservations_user_idx ON reservations (user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS restaurant_tables_capacity_idx ON restaurant_tables (capacity)`,
}

// EnsureSchema creates the tables and indexes if they do not exist yet.
func EnsureSchema(ctx context.Context, db execer) error {
	for i, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
