package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"autopost/internal/models"
	"autopost/internal/repository"
)

var (
	ErrInvalidSlotTime = errors.New("fixed time must be HH:MM")
	ErrInvalidDay      = errors.New("active day must be 0 (Sunday) through 6 (Saturday)")
	ErrNegativeJitter  = errors.New("jitter minutes must not be negative")
	ErrNegativeRatio   = errors.New("type ratios must not be negative")
)

// SettingsService validates, normalizes and persists the schedule config.
type SettingsService struct {
	repo  repository.ConfigRepo
	clock func() time.Time
}

func NewSettingsService(repo repository.ConfigRepo) *SettingsService {
	return &SettingsService{repo: repo, clock: time.Now}
}

// DefaultScheduleConfig is the config used before the user saves one.
func DefaultScheduleConfig() models.ScheduleConfig {
	return models.ScheduleConfig{
		ID:            1,
		FixedTimes:    []string{"09:00", "18:00"},
		ActiveDays:    []int{0, 1, 2, 3, 4, 5, 6},
		JitterMinutes: 15,
		PostToX:       true,
		PostToThreads: false,
		TypeRatios:    models.TypeRatios{A: 3, B: 1, C: 1},
	}
}

// Get returns the stored config, or the default when none was saved yet.
func (s *SettingsService) Get(ctx context.Context) (models.ScheduleConfig, error) {
	cfg, err := s.repo.Load(ctx)
	if err != nil {
		return models.ScheduleConfig{}, err
	}
	if cfg.ID == 0 {
		return DefaultScheduleConfig(), nil
	}
	return cfg, nil
}

// Update validates and saves a new config, returning the normalized form.
// The running scheduler picks the change up on its next evaluation cycle.
func (s *SettingsService) Update(ctx context.Context, c models.ScheduleConfig) (models.ScheduleConfig, error) {
	normalized, err := normalizeConfig(c)
	if err != nil {
		return models.ScheduleConfig{}, err
	}
	normalized.ID = 1
	normalized.UpdatedAt = s.clock().UTC()
	if err := s.repo.Save(ctx, normalized); err != nil {
		return models.ScheduleConfig{}, err
	}
	return normalized, nil
}

func normalizeConfig(c models.ScheduleConfig) (models.ScheduleConfig, error) {
	times, err := normalizeTimes(c.FixedTimes)
	if err != nil {
		return models.ScheduleConfig{}, err
	}
	days, err := normalizeDays(c.ActiveDays)
	if err != nil {
		return models.ScheduleConfig{}, err
	}
	if c.JitterMinutes < 0 {
		return models.ScheduleConfig{}, ErrNegativeJitter
	}
	if c.TypeRatios.A < 0 || c.TypeRatios.B < 0 || c.TypeRatios.C < 0 {
		return models.ScheduleConfig{}, ErrNegativeRatio
	}
	c.FixedTimes = times
	c.ActiveDays = days
	return c, nil
}

func normalizeTimes(entries []string) ([]string, error) {
	seen := make(map[string]bool, len(entries))
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		t, err := time.Parse(slotTimeLayout, e)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSlotTime, e)
		}
		canonical := t.Format(slotTimeLayout)
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		out = append(out, canonical)
	}
	sort.Strings(out)
	return out, nil
}

func normalizeDays(days []int) ([]int, error) {
	seen := make(map[int]bool, len(days))
	out := make([]int, 0, len(days))
	for _, d := range days {
		if d < 0 || d > 6 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidDay, d)
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Ints(out)
	return out, nil
}
