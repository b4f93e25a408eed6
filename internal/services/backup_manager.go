package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/ad/go-telegram-broadcast/internal/db"
	"github.com/ad/go-telegram-broadcast/internal/telegram"
)

// BackupManager produces a plain-SQL dump of the store and delivers it to an
// admin as a document.
type BackupManager struct {
	courier telegram.Courier
	queue   *db.DBQueue
}

func NewBackupManager(courier telegram.Courier, queue *db.DBQueue) *BackupManager {
	return &BackupManager{
		courier: courier,
		queue:   queue,
	}
}

func (bm *BackupManager) CreateBackup() (string, error) {
	var dump strings.Builder

	dump.WriteString("BEGIN TRANSACTION;\n")

	rows, err := bm.queue.DB().Query("SELECT name, sql FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return "", fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	var tables []struct {
		name string
		sql  string
	}

	for rows.Next() {
		var name, createSQL string
		if err := rows.Scan(&name, &createSQL); err != nil {
			return "", fmt.Errorf("failed to scan table info: %w", err)
		}
		tables = append(tables, struct {
			name string
			sql  string
		}{name, createSQL})
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("error iterating tables: %w", err)
	}

	for _, table := range tables {
		dump.WriteString(table.sql)
		dump.WriteString(";\n")

		if err := bm.dumpTableRows(&dump, table.name); err != nil {
			return "", err
		}
	}

	dump.WriteString("COMMIT;\n")

	return dump.String(), nil
}

func (bm *BackupManager) dumpTableRows(dump *strings.Builder, table string) error {
	rows, err := bm.queue.DB().Query(fmt.Sprintf("SELECT * FROM %s", table))
	if err != nil {
		return fmt.Errorf("failed to query table %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("failed to get columns for table %s: %w", table, err)
	}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return fmt.Errorf("failed to scan row in table %s: %w", table, err)
		}

		dump.WriteString(fmt.Sprintf("INSERT INTO %s VALUES (", table))
		for i, val := range values {
			if i > 0 {
				dump.WriteString(", ")
			}
			if val == nil {
				dump.WriteString("NULL")
				continue
			}
			switch v := val.(type) {
			case []byte:
				dump.WriteString(fmt.Sprintf("'%s'", strings.ReplaceAll(string(v), "'", "''")))
			case string:
				dump.WriteString(fmt.Sprintf("'%s'", strings.ReplaceAll(v, "'", "''")))
			case int64, float64, bool:
				dump.WriteString(fmt.Sprintf("%v", v))
			default:
				dump.WriteString(fmt.Sprintf("'%v'", v))
			}
		}
		dump.WriteString(");\n")
	}

	return rows.Err()
}

func (bm *BackupManager) SendBackupToAdmin(ctx context.Context, adminID int64, sqlDump string) error {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("backup_%s.sql", timestamp)

	tmpFile, err := os.CreateTemp("", filename)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString(sqlDump); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write backup to file: %w", err)
	}
	tmpFile.Close()

	file, err := os.Open(tmpFile.Name())
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer file.Close()

	_, err = bm.courier.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID: adminID,
		Document: &tgmodels.InputFileUpload{
			Filename: filename,
			Data:     file,
		},
		Caption: fmt.Sprintf("✅ Бэкап базы данных создан: %s", time.Now().Format("2006-01-02 15:04:05")),
	})
	if err != nil {
		return fmt.Errorf("failed to send backup file: %w", err)
	}

	return nil
}
