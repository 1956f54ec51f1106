package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// UsageCounter stores counters one row per key. Increment is a single
// upsert, so concurrent requests never lose an update.
type UsageCounter struct {
	db *sql.DB
}

func NewUsageCounter(db *sql.DB) *UsageCounter { return &UsageCounter{db: db} }

func (c *UsageCounter) Get(ctx context.Context, key string) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, `SELECT count FROM usage_counters WHERE counter_key = ?`, key).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

func (c *UsageCounter) Increment(ctx context.Context, key string) (int, error) {
	// LAST_INSERT_ID(expr) makes the new value readable on the same connection.
	const q = `
INSERT INTO usage_counters (counter_key, count, updated_at)
VALUES (?, LAST_INSERT_ID(1), ?)
ON DUPLICATE KEY UPDATE count = LAST_INSERT_ID(count + 1), updated_at = VALUES(updated_at)`
	res, err := c.db.ExecContext(ctx, q, key, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	n, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (c *UsageCounter) Decrement(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx,
		`UPDATE usage_counters SET count = count - 1, updated_at = ? WHERE counter_key = ? AND count > 0`,
		time.Now().UTC(), key)
	return err
}
