package repository

import (
	"context"
	"database/sql"

	"autopost/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// ConfigRepo persists the single schedule-config snapshot (row id=1).
type ConfigRepo interface {
	Save(ctx context.Context, c models.ScheduleConfig) error
	Load(ctx context.Context) (models.ScheduleConfig, error)
}

// LogRepo is the append-only execution log.
type LogRepo interface {
	Append(ctx context.Context, e models.ExecutionLogEntry) error
	Recent(ctx context.Context, limit int) ([]models.ExecutionLogEntry, error)
}

type Repository struct {
	ConfigRepo ConfigRepo
	LogRepo    LogRepo
	Auth       Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		ConfigRepo: NewConfigSQLite(db),
		LogRepo:    NewLogSQLite(db),
		Auth:       NewUserRepository(db),
	}
}
