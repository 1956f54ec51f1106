package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/bryanwahyu/medinsight/internal/domain/reports"
)

type ReportRepository struct{ db *sql.DB }

func NewReportRepository(db *sql.DB) *ReportRepository { return &ReportRepository{db: db} }

func (r *ReportRepository) Save(ctx context.Context, m *domain.MedicalReport) error {
	const q = `
INSERT INTO medical_reports
  (id, user_id, person_id, file_name, file_type, extracted_text, analysis, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	analysis, err := nullJSON(m.Analysis)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q,
		string(m.ID), nullString(m.UserID), nullString(m.PersonID),
		m.FileName, m.FileType, nullString(m.ExtractedText), analysis, nowIfZero(m.CreatedAt),
	)
	return err
}

const reportColumns = `id, user_id, person_id, file_name, file_type, extracted_text, analysis, created_at`

func (r *ReportRepository) Get(ctx context.Context, id domain.ReportID) (*domain.MedicalReport, error) {
	// id is a UUID column; anything else cannot match and would make the cast fail.
	if !isUUID(string(id)) {
		return nil, domain.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM medical_reports WHERE id = $1 LIMIT 1`, string(id))
	m, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return m, err
}

func (r *ReportRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.MedicalReport, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `SELECT ` + reportColumns + ` FROM medical_reports WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.MedicalReport
	for rows.Next() {
		m, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanReport(s scanner) (*domain.MedicalReport, error) {
	var (
		m                       domain.MedicalReport
		id                      string
		user, person, text, raw sql.NullString
	)
	if err := s.Scan(&id, &user, &person, &m.FileName, &m.FileType, &text, &raw, &m.CreatedAt); err != nil {
		return nil, err
	}
	analysis, err := fromJSON[domain.StructuredAnalysis](raw)
	if err != nil {
		return nil, fmt.Errorf("decode analysis %s: %w", id, err)
	}
	m.ID = domain.ReportID(id)
	m.UserID, m.PersonID, m.ExtractedText = stringPtr(user), stringPtr(person), stringPtr(text)
	m.Analysis = analysis
	return &m, nil
}
