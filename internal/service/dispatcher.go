package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/timeout"

	"autopost/internal/logger"
	"autopost/internal/models"
	"autopost/internal/platform"
	"autopost/internal/repository"
)

const (
	defaultGenerateTimeout = 90 * time.Second
	defaultPostTimeout     = 60 * time.Second
)

const reasonTimeout = "timeout"

// DispatcherService runs one complete firing: generate text, deliver it to
// every enabled platform concurrently, classify the outcomes and append
// exactly one execution-log entry. Platform failures never abort the other
// platforms.
type DispatcherService struct {
	gen       ContentGenerator
	platforms []platform.Client
	logRepo   repository.LogRepo
	log       *logger.Logger

	generateTimeout time.Duration
	postTimeout     time.Duration

	clock func() time.Time
}

func NewDispatcherService(gen ContentGenerator, platforms []platform.Client, logRepo repository.LogRepo, log *logger.Logger, generateTimeout, postTimeout time.Duration) *DispatcherService {
	if generateTimeout <= 0 {
		generateTimeout = defaultGenerateTimeout
	}
	if postTimeout <= 0 {
		postTimeout = defaultPostTimeout
	}
	return &DispatcherService{
		gen:             gen,
		platforms:       platforms,
		logRepo:         logRepo,
		log:             log,
		generateTimeout: generateTimeout,
		postTimeout:     postTimeout,
		clock:           time.Now,
	}
}

// Dispatch runs one scheduled firing of the given content type under the
// given config snapshot. The result is always recorded, never returned as an
// error: a failed firing is a normal, logged outcome.
func (s *DispatcherService) Dispatch(ctx context.Context, contentType models.ContentType, cfg models.ScheduleConfig) models.DispatchResult {
	started := s.clock().UTC()
	enabled := s.enabledMap(cfg.PostToX, cfg.PostToThreads)

	gctx, cancel := context.WithTimeout(ctx, s.generateTimeout)
	text, err := s.gen.Generate(gctx, contentType, cfg.Persona)
	cancel()
	if err != nil {
		s.log.Errorw("content generation failed", "content_type", contentType, "error", err)
		result := models.DispatchResult{
			StartedAt:      started,
			ContentType:    contentType,
			Outcomes:       s.generationFailedOutcomes(enabled, err),
			Classification: models.FiringFailed,
		}
		s.record(ctx, result, false)
		return result
	}

	result := models.DispatchResult{
		StartedAt:     started,
		ContentType:   contentType,
		GeneratedText: text,
		Outcomes:      s.fanOut(ctx, text, "", enabled),
	}
	result.Classification = models.Classify(result.Outcomes)
	s.record(ctx, result, false)
	return result
}

// Deliver runs a manual fan-out of caller-supplied text, recording the result
// the same way a scheduled firing is recorded.
func (s *DispatcherService) Deliver(ctx context.Context, spec DeliverSpec) models.DispatchResult {
	result := models.DispatchResult{
		StartedAt:     s.clock().UTC(),
		ContentType:   spec.ContentType,
		GeneratedText: spec.Text,
		Outcomes:      s.fanOut(ctx, spec.Text, spec.ImageURL, s.enabledMap(spec.ToX, spec.ToThreads)),
	}
	result.Classification = models.Classify(result.Outcomes)
	s.record(ctx, result, spec.Manual)
	return result
}

// enabledMap returns platform name -> enabled for every registered client.
func (s *DispatcherService) enabledMap(toX, toThreads bool) map[string]bool {
	enabled := make(map[string]bool, len(s.platforms))
	for _, pc := range s.platforms {
		switch pc.Name() {
		case models.PlatformX:
			enabled[pc.Name()] = toX
		case models.PlatformThreads:
			enabled[pc.Name()] = toThreads
		default:
			enabled[pc.Name()] = false
		}
	}
	return enabled
}

func (s *DispatcherService) generationFailedOutcomes(enabled map[string]bool, genErr error) map[string]models.PlatformOutcome {
	outcomes := make(map[string]models.PlatformOutcome, len(enabled))
	for name, on := range enabled {
		if !on {
			outcomes[name] = models.PlatformOutcome{Status: models.OutcomeSkipped}
			continue
		}
		outcomes[name] = models.PlatformOutcome{
			Status: models.OutcomeFailed,
			Reason: fmt.Sprintf("content generation failed: %v", genErr),
		}
	}
	return outcomes
}

// fanOut delivers text to every enabled platform concurrently. Disabled
// platforms are marked skipped without being attempted.
func (s *DispatcherService) fanOut(ctx context.Context, text, imageURL string, enabled map[string]bool) map[string]models.PlatformOutcome {
	outcomes := make(map[string]models.PlatformOutcome, len(s.platforms))

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, pc := range s.platforms {
		if !enabled[pc.Name()] {
			outcomes[pc.Name()] = models.PlatformOutcome{Status: models.OutcomeSkipped}
			continue
		}
		wg.Add(1)
		go func(pc platform.Client) {
			defer wg.Done()
			out := s.deliverOne(ctx, pc, text, imageURL)
			mu.Lock()
			outcomes[pc.Name()] = out
			mu.Unlock()
		}(pc)
	}
	wg.Wait()
	return outcomes
}

// deliverOne posts to a single platform under the per-post timeout policy.
func (s *DispatcherService) deliverOne(ctx context.Context, pc platform.Client, text, imageURL string) models.PlatformOutcome {
	policy := timeout.New[string](s.postTimeout)
	postID, err := failsafe.With(policy).WithContext(ctx).Get(func() (string, error) {
		cctx, cancel := context.WithTimeout(ctx, s.postTimeout)
		defer cancel()
		return pc.Post(cctx, text, imageURL)
	})
	if err != nil {
		reason := deliveryReason(err)
		s.log.Warnw("platform delivery failed", "platform", pc.Name(), "reason", reason)
		return models.PlatformOutcome{Status: models.OutcomeFailed, Reason: reason}
	}
	s.log.Infow("platform delivery succeeded", "platform", pc.Name(), "post_id", postID)
	return models.PlatformOutcome{Status: models.OutcomeSuccess, PostID: postID}
}

func deliveryReason(err error) string {
	if errors.Is(err, timeout.ErrExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return reasonTimeout
	}
	var perr *platform.Error
	if errors.As(err, &perr) {
		return perr.Reason
	}
	return err.Error()
}

// record appends the single execution-log entry for one dispatch. Append
// failures are logged and swallowed: the dispatch already happened.
func (s *DispatcherService) record(ctx context.Context, r models.DispatchResult, manual bool) {
	entry := models.ExecutionLogEntry{
		OccurredAt: r.StartedAt,
		Level:      levelFor(r.Classification),
		Kind:       models.LogKindFiring,
		Message:    firingMessage(r, manual),
		Metadata: map[string]any{
			"content_type": r.ContentType,
			"manual":       manual,
			"outcomes":     r.Outcomes,
			"text":         r.GeneratedText,
		},
	}
	if err := s.logRepo.Append(ctx, entry); err != nil {
		s.log.Errorw("failed to append execution log entry", "error", err)
	}
}

func levelFor(c models.Classification) string {
	switch c {
	case models.FiringSucceeded:
		return models.LogLevelSuccess
	case models.FiringPartial:
		return models.LogLevelWarn
	case models.FiringFailed:
		return models.LogLevelError
	default:
		return models.LogLevelInfo
	}
}

func firingMessage(r models.DispatchResult, manual bool) string {
	source := "scheduled"
	if manual {
		source = "manual"
	}
	if r.Classification == models.FiringNoop {
		return fmt.Sprintf("%s firing skipped: no platform enabled", source)
	}
	if r.ContentType != "" {
		return fmt.Sprintf("%s firing %s (type %s)", source, r.Classification, r.ContentType)
	}
	return fmt.Sprintf("%s firing %s", source, r.Classification)
}
