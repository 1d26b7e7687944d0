package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"autopost/internal/logger"
	"autopost/internal/models"
	"autopost/internal/repository"
)

// idlePollInterval is how often the runner re-reads the config while the
// calendar yields no upcoming slot.
const idlePollInterval = time.Minute

// firingDispatcher is the slice of the dispatcher the runner needs.
type firingDispatcher interface {
	Dispatch(ctx context.Context, contentType models.ContentType, cfg models.ScheduleConfig) models.DispatchResult
}

// RunnerService owns the background scheduling loop. Each cycle it loads a
// fresh config snapshot, asks the planner for the next firing, sleeps until
// the jittered instant and hands the firing to the dispatcher. Start and Stop
// are idempotent; Stop never aborts an in-flight dispatch.
type RunnerService struct {
	baseCtx  context.Context
	cfgRepo  repository.ConfigRepo
	logRepo  repository.LogRepo
	dispatch firingDispatcher
	planner  *SlotPlanner
	selector *TypeSelector
	log      *logger.Logger

	clock func() time.Time
	poll  time.Duration

	mu       sync.Mutex
	state    models.RunnerState
	next     *models.SlotFiring
	stopping bool
	stopCh   chan struct{}
	done     chan struct{}

	// after holds the nominal instant of the last fired slot, so a slot
	// fired early by jitter is not fired again at its nominal time.
	after time.Time

	// lastDefects dedupes repeated CONFIG log entries across cycles.
	lastDefects string
}

func NewRunnerService(baseCtx context.Context, cfgRepo repository.ConfigRepo, logRepo repository.LogRepo, dispatch firingDispatcher, planner *SlotPlanner, selector *TypeSelector, log *logger.Logger) *RunnerService {
	return &RunnerService{
		baseCtx:  baseCtx,
		cfgRepo:  cfgRepo,
		logRepo:  logRepo,
		dispatch: dispatch,
		planner:  planner,
		selector: selector,
		log:      log,
		clock:    time.Now,
		poll:     idlePollInterval,
		state:    models.RunnerStopped,
	}
}

// Start launches the loop. Starting an already running runner is a no-op.
func (s *RunnerService) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != models.RunnerStopped {
		s.mu.Unlock()
		s.log.Infow("scheduler start requested while already running")
		return nil
	}
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})
	s.stopping = false
	s.state = models.RunnerIdle
	s.next = nil
	s.after = time.Time{}
	s.lastDefects = ""
	s.mu.Unlock()

	s.appendRunnerEntry(ctx, models.LogLevelInfo, "scheduler started")
	s.log.Infow("scheduler started")
	go s.loop()
	return nil
}

// Stop signals the loop to exit. An in-flight dispatch finishes first.
// Stopping a stopped runner is a no-op.
func (s *RunnerService) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.state == models.RunnerStopped || s.stopping {
		s.mu.Unlock()
		s.log.Infow("scheduler stop requested while not running")
		return nil
	}
	s.stopping = true
	close(s.stopCh)
	s.mu.Unlock()

	s.appendRunnerEntry(ctx, models.LogLevelInfo, "scheduler stop requested")
	s.log.Infow("scheduler stop requested")
	return nil
}

// Status reports the runner state and, when waiting, the upcoming firing.
func (s *RunnerService) Status(ctx context.Context) models.RunnerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := models.RunnerStatus{
		State:   s.state,
		Running: s.state != models.RunnerStopped,
	}
	if s.next != nil {
		next := *s.next
		status.NextFiring = &next
	}
	return status
}

func (s *RunnerService) loop() {
	defer func() {
		s.mu.Lock()
		s.state = models.RunnerStopped
		s.next = nil
		s.stopping = false
		close(s.done)
		s.mu.Unlock()
		s.appendRunnerEntry(s.baseCtx, models.LogLevelInfo, "scheduler stopped")
		s.log.Infow("scheduler stopped")
	}()

	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		cfg, err := s.cfgRepo.Load(s.baseCtx)
		if err != nil {
			s.log.Errorw("failed to load schedule config", "error", err)
			s.setIdle()
			if !s.sleep(s.poll) {
				return
			}
			continue
		}
		if cfg.ID == 0 {
			cfg = DefaultScheduleConfig()
		}

		now := s.clock()
		firing, defects, ok := s.planner.NextFiring(now, s.after, cfg)
		s.reportDefects(defects)
		if !ok {
			s.setIdle()
			if !s.sleep(s.poll) {
				return
			}
			continue
		}

		s.setAwaiting(firing)
		if wait := firing.ActualTime.Sub(s.clock()); wait > 0 {
			if !s.sleep(wait) {
				return
			}
		}

		s.setDispatching(firing)
		contentType := s.selector.Select(cfg.TypeRatios)
		s.dispatch.Dispatch(s.baseCtx, contentType, cfg)

		s.mu.Lock()
		s.after = firing.NominalTime
		s.mu.Unlock()
	}
}

// sleep waits d or until stop, whichever comes first. Returns false on stop.
func (s *RunnerService) sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-s.stopCh:
		return false
	case <-t.C:
		return true
	}
}

func (s *RunnerService) setIdle() {
	s.mu.Lock()
	s.state = models.RunnerIdle
	s.next = nil
	s.mu.Unlock()
}

func (s *RunnerService) setAwaiting(f models.SlotFiring) {
	s.mu.Lock()
	s.state = models.RunnerAwaitingSlot
	next := f
	s.next = &next
	s.mu.Unlock()
	s.log.Infow("awaiting next slot",
		"nominal", f.NominalTime.Format(time.RFC3339),
		"actual", f.ActualTime.Format(time.RFC3339))
}

func (s *RunnerService) setDispatching(f models.SlotFiring) {
	s.mu.Lock()
	s.state = models.RunnerDispatching
	next := f
	s.next = &next
	s.mu.Unlock()
}

// reportDefects appends one CONFIG entry when the set of malformed schedule
// entries changes, instead of spamming the log every cycle.
func (s *RunnerService) reportDefects(defects []SlotDefect) {
	parts := make([]string, 0, len(defects))
	for _, d := range defects {
		parts = append(parts, d.String())
	}
	key := strings.Join(parts, "; ")

	s.mu.Lock()
	changed := key != s.lastDefects
	s.lastDefects = key
	s.mu.Unlock()
	if !changed || key == "" {
		return
	}

	s.log.Warnw("schedule contains malformed time entries", "defects", key)
	s.appendEntry(s.baseCtx, models.ExecutionLogEntry{
		Level:   models.LogLevelWarn,
		Kind:    models.LogKindConfig,
		Message: "malformed schedule entries skipped: " + key,
	})
}

func (s *RunnerService) appendRunnerEntry(ctx context.Context, level, message string) {
	s.appendEntry(ctx, models.ExecutionLogEntry{
		Level:   level,
		Kind:    models.LogKindRunner,
		Message: message,
	})
}

func (s *RunnerService) appendEntry(ctx context.Context, e models.ExecutionLogEntry) {
	if err := s.logRepo.Append(ctx, e); err != nil {
		s.log.Errorw("failed to append runner log entry", "error", err)
	}
}
