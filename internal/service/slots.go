package service

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"autopost/internal/models"
)

// slotTimeLayout is the wall-clock format accepted in the schedule config.
const slotTimeLayout = "15:04"

// slotScanDays bounds the forward scan for the next active day. A full week
// plus today covers every active-day combination.
const slotScanDays = 8

// SlotDefect reports a malformed schedule entry that was skipped while
// evaluating the calendar. The rest of the schedule stays usable.
type SlotDefect struct {
	Entry string
	Err   error
}

func (d SlotDefect) String() string {
	return fmt.Sprintf("%q: %v", d.Entry, d.Err)
}

// SlotPlanner computes upcoming firings from the schedule config and applies
// the jitter offset. Safe for concurrent use.
type SlotPlanner struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSlotPlanner(seed int64) *SlotPlanner {
	return &SlotPlanner{rng: rand.New(rand.NewSource(seed))}
}

// NextFiring returns the next firing strictly after the `after` cursor.
//
// A candidate slot is the combination of an active weekday and one of the
// configured wall-clock times, evaluated in now's location. Slots whose
// nominal instant is at or before `after` have already fired this pass.
// Slots whose entire jitter window lies in the past are not resurrected:
// the nominal instant must satisfy nominal >= now - jitter.
//
// The returned ActualTime is nominal plus a uniform offset in
// [-jitter, +jitter] minutes. ok is false when the calendar yields nothing
// (no active days or no parseable times).
func (p *SlotPlanner) NextFiring(now, after time.Time, cfg models.ScheduleConfig) (models.SlotFiring, []SlotDefect, bool) {
	minutes, defects := parseSlotTimes(cfg.FixedTimes)
	if len(minutes) == 0 {
		return models.SlotFiring{}, defects, false
	}

	jitter := time.Duration(cfg.JitterMinutes) * time.Minute
	if jitter < 0 {
		jitter = 0
	}
	floor := now.Add(-jitter)

	loc := now.Location()
	for offset := 0; offset < slotScanDays; offset++ {
		day := now.AddDate(0, 0, offset)
		if !cfg.DayActive(day.Weekday()) {
			continue
		}
		for _, m := range minutes {
			nominal := time.Date(day.Year(), day.Month(), day.Day(), m/60, m%60, 0, 0, loc)
			if !nominal.After(after) || nominal.Before(floor) {
				continue
			}
			firing := models.SlotFiring{
				NominalTime: nominal,
				ActualTime:  p.Jitter(nominal, cfg.JitterMinutes),
			}
			return firing, defects, true
		}
	}
	return models.SlotFiring{}, defects, false
}

// Jitter shifts a nominal instant by a uniform whole-minute offset in
// [-jitterMinutes, +jitterMinutes]. Zero or negative jitter returns the
// instant unchanged.
func (p *SlotPlanner) Jitter(nominal time.Time, jitterMinutes int) time.Time {
	if jitterMinutes <= 0 {
		return nominal
	}

	p.mu.Lock()
	offset := p.rng.Intn(2*jitterMinutes+1) - jitterMinutes
	p.mu.Unlock()

	return nominal.Add(time.Duration(offset) * time.Minute)
}

// parseSlotTimes converts HH:MM strings to sorted unique minutes-of-day,
// collecting defects for entries that do not parse.
func parseSlotTimes(entries []string) ([]int, []SlotDefect) {
	var defects []SlotDefect
	seen := make(map[int]bool, len(entries))
	minutes := make([]int, 0, len(entries))
	for _, e := range entries {
		t, err := time.Parse(slotTimeLayout, e)
		if err != nil {
			defects = append(defects, SlotDefect{Entry: e, Err: err})
			continue
		}
		m := t.Hour()*60 + t.Minute()
		if seen[m] {
			continue
		}
		seen[m] = true
		minutes = append(minutes, m)
	}
	sort.Ints(minutes)
	return minutes, defects
}
