package db

import (
	"database/sql"
	"strconv"
	"strings"
)

type AdminConfigRepository struct {
	queue *DBQueue
}

func NewAdminConfigRepository(queue *DBQueue) *AdminConfigRepository {
	return &AdminConfigRepository{queue: queue}
}

// Seed stores the comma-separated admin ID list on first run only.
// An already-populated store wins over the environment (INSERT OR IGNORE),
// so editing the database survives restarts with stale env vars.
func (r *AdminConfigRepository) Seed(adminIDs string) error {
	adminIDs = strings.TrimSpace(adminIDs)
	if adminIDs == "" {
		return nil
	}

	_, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec("INSERT OR IGNORE INTO admin_config (key, value) VALUES (?, ?)", "admin_ids", adminIDs)
		return nil, err
	})
	return err
}

// GetAdminIDs returns the stored admin list. Unparseable fragments are
// skipped; a missing row yields an empty list, not an error.
func (r *AdminConfigRepository) GetAdminIDs() ([]int64, error) {
	ids := []int64{}

	var raw string
	err := r.queue.DB().QueryRow(`SELECT value FROM admin_config WHERE key = ?`, "admin_ids").Scan(&raw)
	if err == sql.ErrNoRows {
		return ids, nil
	}
	if err != nil {
		return nil, err
	}

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
