package mysql

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/bryanwahyu/medinsight/internal/domain/persons"
)

func nullString(s *string) sql.NullString {
	if s == nil || strings.TrimSpace(*s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// nullJSON marshals v, or NULL when v is nil.
func nullJSON[T any](v *T) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func fromJSON[T any](raw sql.NullString) (*T, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal([]byte(raw.String), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// nameKey is the case-insensitive cache key for a medicine name.
func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// validJSONOr wraps invalid JSON as {"raw": ...}
func validJSONOr(details string) string {
	if strings.TrimSpace(details) == "" {
		return "{}"
	}
	var js any
	if json.Unmarshal([]byte(details), &js) != nil {
		b, _ := json.Marshal(map[string]string{"raw": details})
		return string(b)
	}
	return details
}

func nowIfZero(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func nullSex(p *persons.Sex) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func sexPtr(n sql.NullString) *persons.Sex {
	if !n.Valid {
		return nil
	}
	v := persons.Sex(n.String)
	return &v
}
