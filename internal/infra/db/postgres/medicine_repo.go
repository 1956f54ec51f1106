package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	domain "github.com/bryanwahyu/medinsight/internal/domain/medicines"
)

type MedicineRepository struct{ db *sql.DB }

func NewMedicineRepository(db *sql.DB) *MedicineRepository { return &MedicineRepository{db: db} }

func (r *MedicineRepository) Save(ctx context.Context, s *domain.MedicineSearch) error {
	const q = `
INSERT INTO medicine_searches (id, user_id, person_id, medicine_name, search_result, created_at)
VALUES ($1,$2,$3,$4,$5,$6)`
	result, err := nullJSON(s.SearchResult)
	if err != nil {
		return fmt.Errorf("encode search result: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q,
		string(s.ID), nullString(s.UserID), nullString(s.PersonID), s.MedicineName, result, nowIfZero(s.CreatedAt),
	)
	return err
}

const searchColumns = `id, user_id, person_id, medicine_name, search_result, created_at`

// FindByName returns the oldest stored search for the name, ignoring case.
func (r *MedicineRepository) FindByName(ctx context.Context, name string) (*domain.MedicineSearch, error) {
	const q = `SELECT ` + searchColumns + ` FROM medicine_searches
WHERE lower(btrim(medicine_name)) = $1 AND search_result IS NOT NULL
ORDER BY created_at ASC, id ASC LIMIT 1`
	s, err := scanSearch(r.db.QueryRowContext(ctx, q, strings.ToLower(strings.TrimSpace(name))))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (r *MedicineRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.MedicineSearch, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `SELECT ` + searchColumns + ` FROM medicine_searches WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.MedicineSearch
	for rows.Next() {
		s, err := scanSearch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSearch(sc scanner) (*domain.MedicineSearch, error) {
	var (
		s                 domain.MedicineSearch
		id                string
		user, person, raw sql.NullString
	)
	if err := sc.Scan(&id, &user, &person, &s.MedicineName, &raw, &s.CreatedAt); err != nil {
		return nil, err
	}
	info, err := fromJSON[domain.MedicineInfo](raw)
	if err != nil {
		return nil, fmt.Errorf("decode search result %s: %w", id, err)
	}
	s.ID = domain.SearchID(id)
	s.UserID, s.PersonID = stringPtr(user), stringPtr(person)
	s.SearchResult = info
	return &s, nil
}
