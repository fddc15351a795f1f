// Package dbtest opens throwaway SQLite databases carrying the same tables as
// the Postgres migrations, for repository and service tests.
package dbtest

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var schema = []string{
	`CREATE TABLE users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT,
  role TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE vendor_sequences (
  name TEXT PRIMARY KEY,
  value INTEGER NOT NULL DEFAULT 0
);`,
	`CREATE TABLE vendor_applications (
  id TEXT PRIMARY KEY,
  vendor_id TEXT NOT NULL,
  owner_user_id TEXT REFERENCES users(id),
  business_name TEXT NOT NULL,
  business_category TEXT NOT NULL,
  contact_person TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT NOT NULL,
  address_street TEXT NOT NULL DEFAULT '',
  address_city TEXT NOT NULL DEFAULT '',
  address_state TEXT NOT NULL DEFAULT '',
  address_postal_code TEXT NOT NULL DEFAULT '',
  address_country TEXT NOT NULL DEFAULT 'India',
  status TEXT NOT NULL,
  rejection_reason TEXT,
  submitted_at DATETIME NOT NULL,
  reviewed_at DATETIME,
  reviewed_by TEXT,
  version INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE UNIQUE INDEX idx_vendor_applications_vendor_id ON vendor_applications (vendor_id);`,
	`CREATE UNIQUE INDEX idx_vendor_applications_email ON vendor_applications (email);`,
	`CREATE TABLE vendor_documents (
  id TEXT PRIMARY KEY,
  application_id TEXT NOT NULL REFERENCES vendor_applications(id),
  document_type TEXT NOT NULL,
  file_name TEXT NOT NULL,
  storage_key TEXT NOT NULL,
  content_type TEXT NOT NULL,
  size_bytes INTEGER NOT NULL,
  uploaded_by TEXT NOT NULL,
  uploaded_at DATETIME NOT NULL
);`,
	`CREATE TABLE vendor_status_history (
  id TEXT PRIMARY KEY,
  application_id TEXT NOT NULL REFERENCES vendor_applications(id),
  seq INTEGER NOT NULL,
  status TEXT NOT NULL,
  changed_by TEXT,
  changed_at DATETIME NOT NULL,
  comment TEXT,
  is_system INTEGER NOT NULL DEFAULT 0
);`,
	`CREATE UNIQUE INDEX idx_vendor_history_seq ON vendor_status_history (application_id, seq);`,
	`CREATE TABLE outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload BLOB NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`,
	`CREATE TABLE outbox_dlq (
  id TEXT PRIMARY KEY,
  event_id TEXT NOT NULL,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload_json BLOB NOT NULL,
  error_reason TEXT NOT NULL,
  error_message TEXT,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  failed_at DATETIME,
  created_at DATETIME
);`,
}

// Open returns a private in-memory database with the full schema applied. The
// pool is capped at one connection so concurrent callers queue instead of
// tripping over SQLite's writer lock.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:vendorkyc_" + uuid.NewString() + "?mode=memory&cache=shared&_busy_timeout=5000"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return conn
}
