package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"autopost/internal/models"

	"github.com/google/uuid"
)

type LogSQLite struct {
	db *sql.DB
}

func NewLogSQLite(db *sql.DB) *LogSQLite { return &LogSQLite{db: db} }

const (
	insertLogEntrySQL = `
		INSERT INTO execution_log (id, occurred_at, level, kind, message, meta)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	// rowid breaks ties for entries appended within the same second,
	// keeping read-back in insertion order.
	selectRecentLogSQL = `
		SELECT id, occurred_at, level, kind, message, meta
		FROM execution_log
		ORDER BY occurred_at DESC, rowid DESC
		LIMIT ?
	`
)

// Append inserts a new entry. If EntryID or OccurredAt are empty, they're set.
func (r *LogSQLite) Append(ctx context.Context, e models.ExecutionLogEntry) error {
	if e.EntryID == "" {
		e.EntryID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}

	// marshal metadata if present
	var metaPtr *string
	if e.Metadata != nil {
		if b, err := json.Marshal(e.Metadata); err == nil {
			s := string(b)
			metaPtr = &s
		}
	}

	_, err := r.db.ExecContext(ctx, insertLogEntrySQL,
		e.EntryID,
		e.OccurredAt.Format("2006-01-02 15:04:05"), // SQLite TIMESTAMP format
		strings.ToUpper(strings.TrimSpace(e.Level)),
		strings.ToUpper(strings.TrimSpace(e.Kind)),
		e.Message,
		metaPtr,
	)

	return err
}

// Recent returns up to limit entries, most recent first.
func (r *LogSQLite) Recent(ctx context.Context, limit int) ([]models.ExecutionLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, selectRecentLogSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.ExecutionLogEntry, 0, limit)
	for rows.Next() {
		var e models.ExecutionLogEntry
		var metaStr sql.NullString
		if err := rows.Scan(&e.EntryID, &e.OccurredAt, &e.Level, &e.Kind, &e.Message, &metaStr); err != nil {
			return nil, err
		}
		e.OccurredAt = e.OccurredAt.UTC()

		if metaStr.Valid && metaStr.String != "" {
			var v any
			if err := json.Unmarshal([]byte(metaStr.String), &v); err == nil {
				e.Metadata = v
			} else {
				e.Metadata = metaStr.String // keep raw if malformed
			}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
