package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"autopost/internal/models"
	"autopost/internal/service"
)

func TestGetLogs_ReturnsEntries(t *testing.T) {
	auth := &mockAuth{parseID: 1}
	el := &mockExecutionLog{resp: []models.ExecutionLogEntry{
		{EntryID: "id-2", OccurredAt: time.Date(2025, 6, 3, 18, 0, 0, 0, time.UTC), Level: "SUCCESS", Kind: "FIRING", Message: "evening post"},
		{EntryID: "id-1", OccurredAt: time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC), Level: "ERROR", Kind: "FIRING", Message: "morning post"},
	}}
	s := &service.Service{Authorization: auth, ExecutionLog: el}
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/v1/logs/?count=2", nil, "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if el.lastCount != 2 {
		t.Fatalf("count passed = %d, want 2", el.lastCount)
	}

	var resp struct {
		Count   int                        `json:"count"`
		Entries []models.ExecutionLogEntry `json:"entries"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count != 2 || len(resp.Entries) != 2 {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Entries[0].EntryID != "id-2" {
		t.Fatalf("order changed: %+v", resp.Entries)
	}
}

func TestGetLogs_DefaultCount(t *testing.T) {
	auth := &mockAuth{parseID: 1}
	el := &mockExecutionLog{}
	s := &service.Service{Authorization: auth, ExecutionLog: el}
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/v1/logs/", nil, "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if el.lastCount != 0 {
		t.Fatalf("count passed = %d, want 0 (service default)", el.lastCount)
	}
}

func TestGetLogs_BadCount(t *testing.T) {
	auth := &mockAuth{parseID: 1}
	s := &service.Service{Authorization: auth, ExecutionLog: &mockExecutionLog{}}
	r := newTestRouter(s)

	for _, q := range []string{"count=abc", "count=-1", "count=0"} {
		w := doRequest(r, http.MethodGet, "/api/v1/logs/?"+q, nil, "valid")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status=%d, want 400", q, w.Code)
		}
	}
}

func TestGetLogs_ServiceError(t *testing.T) {
	auth := &mockAuth{parseID: 1}
	s := &service.Service{Authorization: auth, ExecutionLog: &mockExecutionLog{err: errBoom}}
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/v1/logs/", nil, "valid")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d, want 500", w.Code)
	}
}
