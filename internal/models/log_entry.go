package models

import "time"

// Log entry levels.
const (
	LogLevelInfo    = "INFO"
	LogLevelSuccess = "SUCCESS"
	LogLevelWarn    = "WARN"
	LogLevelError   = "ERROR"
)

// Log entry kinds.
const (
	LogKindFiring = "FIRING" // one scheduled or manual dispatch
	LogKindRunner = "RUNNER" // runner lifecycle (start/stop/idle)
	LogKindConfig = "CONFIG" // configuration defects surfaced by the calendar
)

// ExecutionLogEntry is a single append-only log record.
type ExecutionLogEntry struct {
	EntryID    string    `json:"entry_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Level      string    `json:"level"` // INFO | SUCCESS | WARN | ERROR
	Kind       string    `json:"kind"`  // FIRING | RUNNER | CONFIG
	Message    string    `json:"message"`
	Metadata   any       `json:"metadata,omitempty"`
}
