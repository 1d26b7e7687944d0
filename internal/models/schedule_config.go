package models

import "time"

// TypeRatios are the relative weights for the three post categories.
// Only the magnitudes relative to each other matter.
type TypeRatios struct {
	A int `json:"a"` // trend-linked posts
	B int `json:"b"` // standalone posts
	C int `json:"c"` // promotion posts
}

// Sum returns the total weight, counting negative entries as zero.
func (r TypeRatios) Sum() int {
	sum := 0
	for _, v := range []int{r.A, r.B, r.C} {
		if v > 0 {
			sum += v
		}
	}
	return sum
}

// ScheduleConfig is the user-editable posting schedule. The runner only ever
// reads an immutable snapshot of it, one per evaluation cycle.
type ScheduleConfig struct {
	ID            int        `json:"id"`
	FixedTimes    []string   `json:"fixed_times"`    // "HH:MM", unique, ascending
	ActiveDays    []int      `json:"active_days"`    // 0=Sunday .. 6=Saturday
	JitterMinutes int        `json:"jitter_minutes"` // bound on the random offset, >= 0
	PostToX       bool       `json:"post_to_x"`
	PostToThreads bool       `json:"post_to_threads"`
	TypeRatios    TypeRatios `json:"type_ratios"`
	Persona       string     `json:"persona"` // persona context passed to the generator
	UpdatedAt     time.Time  `json:"updated_at"`
}

// DayActive reports whether the given weekday is enabled.
func (c ScheduleConfig) DayActive(d time.Weekday) bool {
	for _, day := range c.ActiveDays {
		if day == int(d) {
			return true
		}
	}
	return false
}
