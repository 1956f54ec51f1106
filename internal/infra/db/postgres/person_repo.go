package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"

	domain "github.com/bryanwahyu/medinsight/internal/domain/persons"
)

type PersonRepository struct{ db *sql.DB }

func NewPersonRepository(db *sql.DB) *PersonRepository { return &PersonRepository{db: db} }

var uuidRe = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

func isUUID(s string) bool { return uuidRe.MatchString(s) }

func (r *PersonRepository) Create(ctx context.Context, p *domain.Person) error {
	const q = `
INSERT INTO persons (id, user_id, name, age, sex, height, weight, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.db.ExecContext(ctx, q,
		p.ID, p.UserID, p.Name, nullInt(p.Age), nullSex(p.Sex), nullFloat(p.Height), nullFloat(p.Weight),
		nowIfZero(p.CreatedAt), nowIfZero(p.UpdatedAt),
	)
	return err
}

func (r *PersonRepository) Update(ctx context.Context, p *domain.Person) error {
	if !isUUID(p.ID) {
		return domain.ErrNotFound
	}
	const q = `
UPDATE persons SET name = $1, age = $2, sex = $3, height = $4, weight = $5, updated_at = $6
WHERE id = $7 AND user_id = $8`
	res, err := r.db.ExecContext(ctx, q,
		p.Name, nullInt(p.Age), nullSex(p.Sex), nullFloat(p.Height), nullFloat(p.Weight), nowIfZero(p.UpdatedAt),
		p.ID, p.UserID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *PersonRepository) Delete(ctx context.Context, userID, id string) error {
	if !isUUID(id) {
		return domain.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM persons WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

const personColumns = `id, user_id, name, age, sex, height, weight, created_at, updated_at`

func (r *PersonRepository) Get(ctx context.Context, userID, id string) (*domain.Person, error) {
	if !isUUID(id) {
		return nil, domain.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+personColumns+` FROM persons WHERE id = $1 AND user_id = $2 LIMIT 1`, id, userID)
	p, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

func (r *PersonRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Person, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+personColumns+` FROM persons WHERE user_id = $1 ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPerson(s scanner) (*domain.Person, error) {
	var (
		p              domain.Person
		age            sql.NullInt64
		sex            sql.NullString
		height, weight sql.NullFloat64
	)
	if err := s.Scan(&p.ID, &p.UserID, &p.Name, &age, &sex, &height, &weight, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Age, p.Sex, p.Height, p.Weight = intPtr(age), sexPtr(sex), floatPtr(height), floatPtr(weight)
	return &p, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
