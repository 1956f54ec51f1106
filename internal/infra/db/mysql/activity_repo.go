package mysql

import (
	"context"
	"database/sql"

	domain "github.com/bryanwahyu/medinsight/internal/domain/activity"
)

type ActivityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) *ActivityRepository { return &ActivityRepository{db: db} }

func (r *ActivityRepository) Save(ctx context.Context, a *domain.Activity) error {
	const q = `
INSERT INTO user_activity (user_id, type, details_json, created_at)
VALUES (?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q, a.UserID, string(a.Type), validJSONOr(a.DetailsJSON), nowIfZero(a.CreatedAt))
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		a.ID = id
	}
	return nil
}

func (r *ActivityRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Activity, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, user_id, type, details_json, created_at
FROM user_activity
WHERE user_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Activity
	for rows.Next() {
		var a domain.Activity
		var typ string
		if err := rows.Scan(&a.ID, &a.UserID, &typ, &a.DetailsJSON, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Type = domain.Type(typ)
		out = append(out, &a)
	}
	return out, rows.Err()
}
