package mysql

// Schema is the table layout the repositories expect. Applying it is left
// to whatever provisions the database; integration tests run it directly.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS medical_reports (
  id             CHAR(36)     NOT NULL PRIMARY KEY,
  user_id        VARCHAR(64)  NULL,
  person_id      CHAR(36)     NULL,
  file_name      VARCHAR(255) NOT NULL,
  file_type      VARCHAR(64)  NOT NULL,
  extracted_text MEDIUMTEXT   NULL,
  analysis       JSON         NULL,
  created_at     DATETIME(6)  NOT NULL,
  KEY idx_reports_user (user_id, created_at)
)`,
	`CREATE TABLE IF NOT EXISTS medicine_searches (
  id            CHAR(36)     NOT NULL PRIMARY KEY,
  user_id       VARCHAR(64)  NULL,
  person_id     CHAR(36)     NULL,
  medicine_name VARCHAR(255) NOT NULL,
  name_key      VARCHAR(255) NOT NULL,
  search_result JSON         NULL,
  created_at    DATETIME(6)  NOT NULL,
  KEY idx_searches_name (name_key, created_at),
  KEY idx_searches_user (user_id, created_at)
)`,
	`CREATE TABLE IF NOT EXISTS usage_counters (
  counter_key VARCHAR(128) NOT NULL PRIMARY KEY,
  count       INT          NOT NULL DEFAULT 0,
  updated_at  DATETIME(6)  NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS persons (
  id         CHAR(36)     NOT NULL PRIMARY KEY,
  user_id    VARCHAR(64)  NOT NULL,
  name       VARCHAR(255) NOT NULL,
  age        INT          NULL,
  sex        VARCHAR(16)  NULL,
  height     DOUBLE       NULL,
  weight     DOUBLE       NULL,
  created_at DATETIME(6)  NOT NULL,
  updated_at DATETIME(6)  NOT NULL,
  KEY idx_persons_user (user_id)
)`,
	`CREATE TABLE IF NOT EXISTS user_activity (
  id           BIGINT      NOT NULL AUTO_INCREMENT PRIMARY KEY,
  user_id      VARCHAR(64) NOT NULL,
  type         VARCHAR(32) NOT NULL,
  details_json JSON        NOT NULL,
  created_at   DATETIME(6) NOT NULL,
  KEY idx_activity_user (user_id, created_at)
)`,
}
