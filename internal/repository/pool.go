package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS portfolios (
		id          UUID PRIMARY KEY,
		answers     JSONB NOT NULL,
		profile     JSONB NOT NULL,
		allocation  JSONB NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS portfolio_messages (
		id            BIGSERIAL PRIMARY KEY,
		portfolio_id  UUID NOT NULL REFERENCES portfolios(id) ON DELETE CASCADE,
		sender        TEXT NOT NULL CHECK (sender IN ('user', 'assistant')),
		content       TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_portfolio_messages_portfolio_created
		ON portfolio_messages (portfolio_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS ssh_users (
		id            BIGSERIAL PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		display_name  TEXT NOT NULL DEFAULT '',
		public_key    TEXT NOT NULL,
		key_type      TEXT NOT NULL,
		fingerprint   TEXT NOT NULL UNIQUE,
		portfolio_id  UUID REFERENCES portfolios(id) ON DELETE SET NULL,
		is_active     BOOLEAN NOT NULL DEFAULT TRUE,
		last_login_at TIMESTAMPTZ,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// RunMigrations creates the tables used by the repositories. Every statement
// is idempotent.
func RunMigrations(ctx context.Context, pool PgxPool, tracer trace.Tracer) error {
	_, span := tracer.Start(ctx, "repository.run-migrations")
	defer span.End()

	batch := &pgx.Batch{}
	for _, stmt := range schema {
		batch.Queue(stmt)
	}

	br := pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range schema {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
