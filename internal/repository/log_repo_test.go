package repository

import (
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"autopost/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestLogAppend_FillsDefaults(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewLogSQLite(db)

	// EntryID and OccurredAt are generated; level/kind are normalized.
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO execution_log")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "SUCCESS", "FIRING", "posted", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Append(ctx(t), models.ExecutionLogEntry{
		Level:    " success ",
		Kind:     "firing",
		Message:  "posted",
		Metadata: map[string]any{"content_type": "A"},
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestLogAppend_DBError(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewLogSQLite(db)

	mock.ExpectExec("INSERT INTO execution_log").
		WillReturnError(errors.New("disk full"))

	err := repo.Append(ctx(t), models.ExecutionLogEntry{Level: "INFO", Kind: "RUNNER", Message: "x"})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected db error, got %v", err)
	}
}

func TestLogRecent_ParsesMetadataAndOrders(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewLogSQLite(db)

	newer := time.Date(2025, 6, 3, 18, 2, 0, 0, time.UTC)
	older := time.Date(2025, 6, 3, 9, 1, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "occurred_at", "level", "kind", "message", "meta"}).
		AddRow("id-2", newer, "SUCCESS", "FIRING", "evening post", `{"content_type":"A"}`).
		AddRow("id-1", older, "ERROR", "FIRING", "morning post", "not-json")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, occurred_at, level, kind, message, meta")).
		WithArgs(2).
		WillReturnRows(rows)

	entries, err := repo.Recent(ctx(t), 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d", len(entries))
	}
	if entries[0].EntryID != "id-2" || !entries[0].OccurredAt.Equal(newer) {
		t.Fatalf("first entry: %+v", entries[0])
	}
	meta, ok := entries[0].Metadata.(map[string]any)
	if !ok || meta["content_type"] != "A" {
		t.Fatalf("metadata not parsed: %#v", entries[0].Metadata)
	}
	// malformed metadata kept raw
	if entries[1].Metadata != "not-json" {
		t.Fatalf("raw metadata not kept: %#v", entries[1].Metadata)
	}
}

func TestLogRecent_BreaksSameSecondTiesByInsertionOrder(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewLogSQLite(db)

	// Two entries in the same second; uuid ids give no ordering, so the
	// query must fall back to rowid.
	at := time.Date(2025, 6, 3, 18, 0, 5, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "occurred_at", "level", "kind", "message", "meta"}).
		AddRow("id-second", at, "INFO", "RUNNER", "scheduler stopped", nil).
		AddRow("id-first", at, "INFO", "RUNNER", "scheduler stop requested", nil)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY occurred_at DESC, rowid DESC")).
		WithArgs(2).
		WillReturnRows(rows)

	entries, err := repo.Recent(ctx(t), 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 || entries[0].EntryID != "id-second" || entries[1].EntryID != "id-first" {
		t.Fatalf("entries out of order: %+v", entries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestLogRecent_DefaultLimit(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewLogSQLite(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, occurred_at, level, kind, message, meta")).
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "occurred_at", "level", "kind", "message", "meta"}))

	entries, err := repo.Recent(ctx(t), 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("entries = %d", len(entries))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}
