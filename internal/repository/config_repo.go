package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"autopost/internal/models"
)

type ConfigSQLite struct {
	db *sql.DB
}

func NewConfigSQLite(db *sql.DB) *ConfigSQLite {
	return &ConfigSQLite{db: db}
}

// constants and helpers for clarity and reuse
const (
	scheduleConfigRowID = 1

	insertOrUpdateConfigSQL = `
		INSERT INTO schedule_config (id, fixed_times, active_days, jitter_minutes, post_to_x, post_to_threads, ratio_a, ratio_b, ratio_c, persona, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			fixed_times=excluded.fixed_times,
			active_days=excluded.active_days,
			jitter_minutes=excluded.jitter_minutes,
			post_to_x=excluded.post_to_x,
			post_to_threads=excluded.post_to_threads,
			ratio_a=excluded.ratio_a,
			ratio_b=excluded.ratio_b,
			ratio_c=excluded.ratio_c,
			persona=excluded.persona,
			updated_at=excluded.updated_at
	`

	selectConfigSQL = `
		SELECT id, fixed_times, active_days, jitter_minutes, post_to_x, post_to_threads, ratio_a, ratio_b, ratio_c, persona, updated_at
		FROM schedule_config WHERE id=?
	`
)

// marshalStrings converts a string slice to its JSON text form.
func marshalStrings(ss []string) (string, error) {
	b, err := json.Marshal(ss)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// marshalInts converts an int slice to its JSON text form.
func marshalInts(ii []int) (string, error) {
	b, err := json.Marshal(ii)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Save updates or inserts the schedule_config row (id always 1).
func (r *ConfigSQLite) Save(ctx context.Context, c models.ScheduleConfig) error {
	timesJSON, err := marshalStrings(c.FixedTimes)
	if err != nil {
		return fmt.Errorf("marshal fixed_times: %w", err)
	}
	daysJSON, err := marshalInts(c.ActiveDays)
	if err != nil {
		return fmt.Errorf("marshal active_days: %w", err)
	}

	// ensure UpdatedAt is always persisted as UTC; set if zero
	tsUTC := c.UpdatedAt
	if tsUTC.IsZero() {
		tsUTC = time.Now().UTC()
	} else {
		tsUTC = tsUTC.UTC()
	}

	_, err = r.db.ExecContext(ctx, insertOrUpdateConfigSQL,
		scheduleConfigRowID,
		timesJSON,
		daysJSON,
		c.JitterMinutes,
		c.PostToX,
		c.PostToThreads,
		c.TypeRatios.A,
		c.TypeRatios.B,
		c.TypeRatios.C,
		c.Persona,
		tsUTC,
	)
	return err
}

// Load fetches the single schedule_config row (id=1).
// Returns a zero-ID config if no row exists yet.
func (r *ConfigSQLite) Load(ctx context.Context) (models.ScheduleConfig, error) {
	row := r.db.QueryRowContext(ctx, selectConfigSQL, scheduleConfigRowID)

	var (
		c         models.ScheduleConfig
		timesJSON string
		daysJSON  string
	)
	if err := row.Scan(
		&c.ID,
		&timesJSON,
		&daysJSON,
		&c.JitterMinutes,
		&c.PostToX,
		&c.PostToThreads,
		&c.TypeRatios.A,
		&c.TypeRatios.B,
		&c.TypeRatios.C,
		&c.Persona,
		&c.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ScheduleConfig{}, nil // no config yet
		}
		return models.ScheduleConfig{}, err
	}

	if err := json.Unmarshal([]byte(timesJSON), &c.FixedTimes); err != nil {
		return models.ScheduleConfig{}, fmt.Errorf("unmarshal fixed_times: %w", err)
	}
	if err := json.Unmarshal([]byte(daysJSON), &c.ActiveDays); err != nil {
		return models.ScheduleConfig{}, fmt.Errorf("unmarshal active_days: %w", err)
	}
	c.UpdatedAt = c.UpdatedAt.UTC()

	return c, nil
}
