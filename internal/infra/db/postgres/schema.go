package postgres

// Schema mirrors the MySQL layout with Postgres types.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS medical_reports (
  id             UUID        PRIMARY KEY,
  user_id        TEXT        NULL,
  person_id      UUID        NULL,
  file_name      TEXT        NOT NULL,
  file_type      TEXT        NOT NULL,
  extracted_text TEXT        NULL,
  analysis       JSONB       NULL,
  created_at     TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_reports_user ON medical_reports (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS medicine_searches (
  id            UUID        PRIMARY KEY,
  user_id       TEXT        NULL,
  person_id     UUID        NULL,
  medicine_name TEXT        NOT NULL,
  search_result JSONB       NULL,
  created_at    TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_searches_name ON medicine_searches (lower(btrim(medicine_name)), created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_searches_user ON medicine_searches (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS usage_counters (
  counter_key TEXT        PRIMARY KEY,
  count       INTEGER     NOT NULL DEFAULT 0,
  updated_at  TIMESTAMPTZ NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS persons (
  id         UUID             PRIMARY KEY,
  user_id    TEXT             NOT NULL,
  name       TEXT             NOT NULL,
  age        INTEGER          NULL,
  sex        TEXT             NULL,
  height     DOUBLE PRECISION NULL,
  weight     DOUBLE PRECISION NULL,
  created_at TIMESTAMPTZ      NOT NULL,
  updated_at TIMESTAMPTZ      NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_persons_user ON persons (user_id)`,
	`CREATE TABLE IF NOT EXISTS user_activity (
  id           BIGSERIAL   PRIMARY KEY,
  user_id      TEXT        NOT NULL,
  type         TEXT        NOT NULL,
  details_json JSONB       NOT NULL,
  created_at   TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_user ON user_activity (user_id, created_at)`,
}
