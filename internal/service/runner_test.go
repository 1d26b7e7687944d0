package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"autopost/internal/models"
)

// ---- stubs ----

type memConfig struct {
	mu  sync.Mutex
	cfg models.ScheduleConfig
	err error
}

func (m *memConfig) Load(ctx context.Context) (models.ScheduleConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg, m.err
}

func (m *memConfig) Save(ctx context.Context, c models.ScheduleConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = c
	return nil
}

type stubDispatcher struct {
	calls   int32
	started chan struct{} // closed-ish signal per call, buffered
	block   chan struct{} // when non-nil, Dispatch blocks until closed
}

func (d *stubDispatcher) Dispatch(ctx context.Context, ct models.ContentType, cfg models.ScheduleConfig) models.DispatchResult {
	atomic.AddInt32(&d.calls, 1)
	if d.started != nil {
		d.started <- struct{}{}
	}
	if d.block != nil {
		<-d.block
	}
	return models.DispatchResult{ContentType: ct, Classification: models.FiringSucceeded}
}

func newTestRunner(cfg models.ScheduleConfig, d *stubDispatcher, now time.Time) (*RunnerService, *memLog) {
	log := &memLog{}
	r := NewRunnerService(context.Background(), &memConfig{cfg: cfg}, log, d, NewSlotPlanner(1), NewTypeSelector(1), testLog())
	r.poll = 10 * time.Millisecond
	if !now.IsZero() {
		r.clock = func() time.Time { return now }
	}
	return r, log
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// ---- tests ----

func TestRunner_FiresDueSlotExactlyOnce(t *testing.T) {
	t.Parallel()

	// Clock pinned to the nominal instant: the slot is due immediately,
	// and must not fire again on later cycles.
	now := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	cfg := allDaysConfig([]string{"09:00", "18:00"}, 0)
	d := &stubDispatcher{started: make(chan struct{}, 10)}
	r, _ := newTestRunner(cfg, d, now)

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() { _ = r.Stop(context.Background()) }()

	<-d.started
	// Give the loop time to run further cycles; the 18:00 slot parks it.
	time.Sleep(100 * time.Millisecond)
	if n := atomic.LoadInt32(&d.calls); n != 1 {
		t.Fatalf("dispatch calls = %d, want 1", n)
	}

	st := r.Status(context.Background())
	if st.State != models.RunnerAwaitingSlot {
		t.Fatalf("state = %q, want awaiting_slot", st.State)
	}
	if st.NextFiring == nil || st.NextFiring.NominalTime.Hour() != 18 {
		t.Fatalf("next firing = %+v, want 18:00 slot", st.NextFiring)
	}
}

func TestRunner_StartStopIdempotent(t *testing.T) {
	t.Parallel()

	cfg := models.ScheduleConfig{ID: 1} // empty calendar, loop idles
	d := &stubDispatcher{}
	r, _ := newTestRunner(cfg, d, time.Time{})

	ctx := context.Background()
	if err := r.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := r.Start(ctx); err != nil {
		t.Fatalf("second start: %v", err)
	}
	waitFor(t, "idle state", func() bool {
		return r.Status(ctx).State == models.RunnerIdle
	})

	if err := r.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := r.Stop(ctx); err != nil {
		t.Fatalf("second stop: %v", err)
	}
	waitFor(t, "stopped state", func() bool {
		return r.Status(ctx).State == models.RunnerStopped
	})
	if r.Status(ctx).Running {
		t.Fatal("stopped runner must report running=false")
	}
	if n := atomic.LoadInt32(&d.calls); n != 0 {
		t.Fatalf("idle runner dispatched %d times", n)
	}
}

func TestRunner_StopDoesNotAbortInFlightDispatch(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	cfg := allDaysConfig([]string{"09:00"}, 0)
	d := &stubDispatcher{started: make(chan struct{}, 1), block: make(chan struct{})}
	r, _ := newTestRunner(cfg, d, now)

	ctx := context.Background()
	if err := r.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	<-d.started

	if err := r.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	// The dispatch is still blocked; the runner must report it in flight.
	if st := r.Status(ctx); st.State != models.RunnerDispatching {
		t.Fatalf("state during in-flight dispatch = %q", st.State)
	}

	close(d.block)
	waitFor(t, "stopped state", func() bool {
		return r.Status(ctx).State == models.RunnerStopped
	})
	if n := atomic.LoadInt32(&d.calls); n != 1 {
		t.Fatalf("dispatch calls = %d, want 1", n)
	}
}

func TestRunner_RestartFiresAgain(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	cfg := allDaysConfig([]string{"09:00"}, 0)
	d := &stubDispatcher{started: make(chan struct{}, 10)}
	r, _ := newTestRunner(cfg, d, now)

	ctx := context.Background()
	if err := r.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	<-d.started
	if err := r.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	waitFor(t, "stopped state", func() bool {
		return r.Status(ctx).State == models.RunnerStopped
	})

	// A restart resets the cursor; the same due slot fires again.
	if err := r.Start(ctx); err != nil {
		t.Fatalf("restart: %v", err)
	}
	<-d.started
	_ = r.Stop(ctx)
	waitFor(t, "stopped state", func() bool {
		return r.Status(ctx).State == models.RunnerStopped
	})
	if n := atomic.LoadInt32(&d.calls); n != 2 {
		t.Fatalf("dispatch calls = %d, want 2", n)
	}
}

func TestRunner_LifecycleEntriesAppended(t *testing.T) {
	t.Parallel()

	cfg := models.ScheduleConfig{ID: 1}
	d := &stubDispatcher{}
	r, log := newTestRunner(cfg, d, time.Time{})

	ctx := context.Background()
	_ = r.Start(ctx)
	_ = r.Stop(ctx)
	waitFor(t, "stopped state", func() bool {
		return r.Status(ctx).State == models.RunnerStopped
	})

	waitFor(t, "lifecycle entries", func() bool { return log.count() >= 3 })
	for _, e := range log.snapshot() {
		if e.Kind != models.LogKindRunner {
			t.Fatalf("unexpected entry kind %q: %+v", e.Kind, e)
		}
	}
}

func TestRunner_MalformedEntriesLoggedOnce(t *testing.T) {
	t.Parallel()

	cfg := allDaysConfig([]string{"bogus"}, 0)
	d := &stubDispatcher{}
	r, log := newTestRunner(cfg, d, time.Time{})

	ctx := context.Background()
	_ = r.Start(ctx)
	waitFor(t, "config defect entry", func() bool {
		for _, e := range log.snapshot() {
			if e.Kind == models.LogKindConfig {
				return true
			}
		}
		return false
	})
	// Let several poll cycles pass; the same defect must not repeat.
	time.Sleep(60 * time.Millisecond)
	_ = r.Stop(ctx)
	waitFor(t, "stopped state", func() bool {
		return r.Status(ctx).State == models.RunnerStopped
	})

	defectEntries := 0
	for _, e := range log.snapshot() {
		if e.Kind == models.LogKindConfig {
			defectEntries++
		}
	}
	if defectEntries != 1 {
		t.Fatalf("config defect entries = %d, want 1", defectEntries)
	}
}
