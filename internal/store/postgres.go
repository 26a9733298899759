package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/planwise/planner-bot/internal/domain"
)

// PostgresSnapshot stores one row per user with the whole record as JSONB. It
// keeps the same whole-store-per-mutation contract as the file adapter; the
// relational shape only buys concurrent-reader safety and operability.
type PostgresSnapshot struct {
	db *sql.DB
}

var _ Snapshot = (*PostgresSnapshot)(nil)

// NewPostgresSnapshot builds a snapshot adapter over an open database handle.
func NewPostgresSnapshot(db *sql.DB) *PostgresSnapshot {
	return &PostgresSnapshot{db: db}
}

// EnsureSchema creates the backing table if it does not exist.
func (p *PostgresSnapshot) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS planner_users (
			user_id    TEXT PRIMARY KEY,
			record     JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	if _, err := p.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create planner_users table: %w", err)
	}
	return nil
}

// HealthCheck pings the database so the readiness probe can tell a wedged
// connection pool from a healthy one.
func (p *PostgresSnapshot) HealthCheck(ctx context.Context) error {
	if p == nil || p.db == nil {
		return sql.ErrConnDone
	}
	return p.db.PingContext(ctx)
}

// Load reads every row into the user map.
func (p *PostgresSnapshot) Load(ctx context.Context) (map[string]*domain.User, error) {
	const query = `SELECT user_id, record FROM planner_users`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select planner users: %w", err)
	}
	defer rows.Close()

	users := make(map[string]*domain.User)
	for rows.Next() {
		var (
			userID string
			record []byte
		)
		if err := rows.Scan(&userID, &record); err != nil {
			return nil, fmt.Errorf("scan planner user: %w", err)
		}

		var u domain.User
		if err := json.Unmarshal(record, &u); err != nil {
			return nil, fmt.Errorf("decode record for user %s: %w", userID, err)
		}
		users[userID] = &u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate planner users: %w", err)
	}
	return users, nil
}

// Save upserts every record in one transaction. Users are never deleted, so no
// row reconciliation is needed beyond the upsert.
func (p *PostgresSnapshot) Save(ctx context.Context, users map[string]*domain.User) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	const upsert = `
		INSERT INTO planner_users (user_id, record, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET record = EXCLUDED.record, updated_at = now()
	`

	stmt, err := tx.PrepareContext(ctx, upsert)
	if err != nil {
		return fmt.Errorf("prepare snapshot upsert: %w", err)
	}
	defer stmt.Close()

	for userID, u := range users {
		record, err := json.Marshal(u)
		if err != nil {
			return fmt.Errorf("encode record for user %s: %w", userID, err)
		}
		if _, err := stmt.ExecContext(ctx, userID, record); err != nil {
			return fmt.Errorf("upsert user %s: %w", userID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot tx: %w", err)
	}
	return nil
}
