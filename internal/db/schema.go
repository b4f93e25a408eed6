package db

import (
	"database/sql"
	"fmt"
	"os"
)

const schema = `
CREATE TABLE IF NOT EXISTS admin_config (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS broadcast_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    operator_id INTEGER NOT NULL,
    text TEXT NOT NULL DEFAULT '',
    media_kind TEXT NOT NULL DEFAULT '',
    successful INTEGER NOT NULL DEFAULT 0,
    failed INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_broadcast_log_created ON broadcast_log(created_at);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

// OpenStore opens the sqlite store at path and initializes the schema.
// An unreadable or corrupt store is not fatal: the file is recreated empty
// so the bot starts with no admins instead of refusing to launch.
func OpenStore(path string) (*sql.DB, error) {
	sqlDB, err := open(path)
	if err == nil {
		return sqlDB, nil
	}

	if path == ":memory:" {
		return nil, err
	}

	if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
		return nil, fmt.Errorf("store unusable and could not be reset: %w", err)
	}

	sqlDB, retryErr := open(path)
	if retryErr != nil {
		return nil, fmt.Errorf("store reset failed: %w", retryErr)
	}
	return sqlDB, nil
}

func open(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := InitSchema(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return sqlDB, nil
}
