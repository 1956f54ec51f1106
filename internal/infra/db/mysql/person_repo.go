package mysql

import (
	"context"
	"database/sql"
	"errors"

	domain "github.com/bryanwahyu/medinsight/internal/domain/persons"
)

type PersonRepository struct {
	db *sql.DB
}

func NewPersonRepository(db *sql.DB) *PersonRepository { return &PersonRepository{db: db} }

func (r *PersonRepository) Create(ctx context.Context, p *domain.Person) error {
	const q = `
INSERT INTO persons (id, user_id, name, age, sex, height, weight, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?)`
	_, err := r.db.ExecContext(ctx, q,
		p.ID, p.UserID, p.Name, nullInt(p.Age), nullSex(p.Sex), nullFloat(p.Height), nullFloat(p.Weight),
		nowIfZero(p.CreatedAt), nowIfZero(p.UpdatedAt),
	)
	return err
}

func (r *PersonRepository) Update(ctx context.Context, p *domain.Person) error {
	const q = `
UPDATE persons SET name = ?, age = ?, sex = ?, height = ?, weight = ?, updated_at = ?
WHERE id = ? AND user_id = ?`
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM persons WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

const personColumns = `id, user_id, name, age, sex, height, weight, created_at, updated_at`

func (r *PersonRepository) Get(ctx context.Context, userID, id string) (*domain.Person, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+personColumns+` FROM persons WHERE id = ? AND user_id = ? LIMIT 1`, id, userID)
	p, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

func (r *PersonRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Person, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+personColumns+` FROM persons WHERE user_id = ? ORDER BY created_at ASC, id ASC`, userID)
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
