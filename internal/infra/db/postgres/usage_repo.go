package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// UsageCounter stores counters one row per key; Increment is one upsert.
type UsageCounter struct{ db *sql.DB }

func NewUsageCounter(db *sql.DB) *UsageCounter { return &UsageCounter{db: db} }

func (c *UsageCounter) Get(ctx context.Context, key string) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, `SELECT count FROM usage_counters WHERE counter_key = $1`, key).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

func (c *UsageCounter) Increment(ctx context.Context, key string) (int, error) {
	const q = `
INSERT INTO usage_counters (counter_key, count, updated_at)
VALUES ($1, 1, $2)
ON CONFLICT (counter_key) DO UPDATE SET
 count = usage_counters.count + 1,
 updated_at = EXCLUDED.updated_at
RETURNING count`
	var n int
	if err := c.db.QueryRowContext(ctx, q, key, time.Now().UTC()).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (c *UsageCounter) Decrement(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx,
		`UPDATE usage_counters SET count = count - 1, updated_at = $1 WHERE counter_key = $2 AND count > 0`,
		time.Now().UTC(), key)
	return err
}
