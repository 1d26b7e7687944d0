package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"autopost/internal/models"
	"autopost/internal/repository"
)

var (
	ErrUnknownContentType = errors.New("unknown content type")
	ErrEmptyText          = errors.New("text must not be empty")
)

// manualDispatcher is the slice of the dispatcher the composer needs.
type manualDispatcher interface {
	Deliver(ctx context.Context, spec DeliverSpec) models.DispatchResult
}

// ComposerService backs the manual "generate a draft" and "publish now"
// operations. Publish reuses the scheduled dispatch path so manual posts are
// classified and logged the same way.
type ComposerService struct {
	gen             ContentGenerator
	dispatch        manualDispatcher
	cfgRepo         repository.ConfigRepo
	generateTimeout time.Duration
}

func NewComposerService(gen ContentGenerator, dispatch manualDispatcher, cfgRepo repository.ConfigRepo, generateTimeout time.Duration) *ComposerService {
	if generateTimeout <= 0 {
		generateTimeout = defaultGenerateTimeout
	}
	return &ComposerService{
		gen:             gen,
		dispatch:        dispatch,
		cfgRepo:         cfgRepo,
		generateTimeout: generateTimeout,
	}
}

// Generate produces one draft of the requested type without publishing it.
func (s *ComposerService) Generate(ctx context.Context, p ComposeParams) (string, error) {
	switch p.ContentType {
	case models.ContentTypeA, models.ContentTypeB, models.ContentTypeC:
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownContentType, p.ContentType)
	}

	cfg, err := s.cfgRepo.Load(ctx)
	if err != nil {
		return "", err
	}
	if cfg.ID == 0 {
		cfg = DefaultScheduleConfig()
	}

	gctx, cancel := context.WithTimeout(ctx, s.generateTimeout)
	defer cancel()
	return s.gen.Generate(gctx, p.ContentType, cfg.Persona)
}

// Publish delivers caller-supplied text immediately to the selected
// platforms. The result is recorded in the execution log like any firing.
func (s *ComposerService) Publish(ctx context.Context, p PublishParams) (models.DispatchResult, error) {
	if strings.TrimSpace(p.Text) == "" {
		return models.DispatchResult{}, ErrEmptyText
	}
	result := s.dispatch.Deliver(ctx, DeliverSpec{
		Text:      p.Text,
		ImageURL:  p.ImageURL,
		ToX:       p.PostToX,
		ToThreads: p.PostToThreads,
		Manual:    true,
	})
	return result, nil
}
