package db

import (
	"database/sql"

	"github.com/ad/go-telegram-broadcast/internal/models"
)

type BroadcastLogRepository struct {
	queue *DBQueue
}

func NewBroadcastLogRepository(queue *DBQueue) *BroadcastLogRepository {
	return &BroadcastLogRepository{queue: queue}
}

func (r *BroadcastLogRepository) Record(entry *models.BroadcastLogEntry) error {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		res, err := db.Exec(`
			INSERT INTO broadcast_log (operator_id, text, media_kind, successful, failed)
			VALUES (?, ?, ?, ?, ?)
		`, entry.OperatorID, entry.Text, entry.MediaKind, entry.Successful, entry.Failed)
		if err != nil {
			return nil, err
		}
		return res.LastInsertId()
	})
	if err != nil {
		return err
	}

	if id, ok := result.(int64); ok {
		entry.ID = id
	}
	return nil
}

// Recent returns the newest entries first, at most limit of them.
func (r *BroadcastLogRepository) Recent(limit int) ([]*models.BroadcastLogEntry, error) {
	rows, err := r.queue.DB().Query(`
		SELECT id, operator_id, text, media_kind, successful, failed, created_at
		FROM broadcast_log
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*models.BroadcastLogEntry{}
	for rows.Next() {
		var entry models.BroadcastLogEntry
		if err := rows.Scan(&entry.ID, &entry.OperatorID, &entry.Text, &entry.MediaKind, &entry.Successful, &entry.Failed, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}
