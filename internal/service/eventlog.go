package service

import (
	"context"

	"autopost/internal/models"
	"autopost/internal/repository"
)

const (
	defaultRecentCount = 50
	maxRecentCount     = 500
)

// ExecutionLogService reads back the append-only firing history.
type ExecutionLogService struct {
	repo repository.LogRepo
}

func NewExecutionLogService(repo repository.LogRepo) *ExecutionLogService {
	return &ExecutionLogService{repo: repo}
}

// Recent returns the newest entries, most recent first. A non-positive count
// falls back to the default; oversized counts are clamped.
func (s *ExecutionLogService) Recent(ctx context.Context, count int) ([]models.ExecutionLogEntry, error) {
	if count <= 0 {
		count = defaultRecentCount
	}
	if count > maxRecentCount {
		count = maxRecentCount
	}
	return s.repo.Recent(ctx, count)
}
