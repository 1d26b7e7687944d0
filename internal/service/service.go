package service

import (
	"context"
	"time"

	"autopost/internal/logger"
	"autopost/internal/models"
	"autopost/internal/platform"
	"autopost/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Scheduler exposes runner commands: start/stop and the queryable status.
// Start and stop are idempotent.
type Scheduler interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Status(ctx context.Context) models.RunnerStatus
}

// Composer exposes the manual one-off operations: generate a draft and
// publish given text through the same dispatch path the runner uses.
type Composer interface {
	Generate(ctx context.Context, p ComposeParams) (string, error)
	Publish(ctx context.Context, p PublishParams) (models.DispatchResult, error)
}

// Settings reads and updates the persisted schedule configuration.
type Settings interface {
	Get(ctx context.Context) (models.ScheduleConfig, error)
	Update(ctx context.Context, c models.ScheduleConfig) (models.ScheduleConfig, error)
}

// ExecutionLog exposes the append-only firing history, most recent first.
type ExecutionLog interface {
	Recent(ctx context.Context, count int) ([]models.ExecutionLogEntry, error)
}

// ContentGenerator is the external text generator collaborator.
type ContentGenerator interface {
	Generate(ctx context.Context, contentType models.ContentType, persona string) (string, error)
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Scheduler
	Composer
	Settings
	ExecutionLog
	Authorization
}

// Deps carries everything NewService needs to wire the sub-services.
type Deps struct {
	Repos     *repository.Repository
	Generator ContentGenerator
	Platforms []platform.Client
	Log       *logger.Logger

	AuthSigningKey string

	// per-call bounds for one firing
	GenerateTimeout time.Duration
	PostTimeout     time.Duration

	// BaseCtx bounds the runner's background work; defaults to Background.
	BaseCtx context.Context
}

// NewService wires the repository layer and collaborators into concrete services.
func NewService(d Deps) *Service {
	if d.BaseCtx == nil {
		d.BaseCtx = context.Background()
	}
	seed := time.Now().UnixNano()
	planner := NewSlotPlanner(seed)
	selector := NewTypeSelector(seed + 1)
	dispatcher := NewDispatcherService(d.Generator, d.Platforms, d.Repos.LogRepo, d.Log, d.GenerateTimeout, d.PostTimeout)

	return &Service{
		Scheduler:     NewRunnerService(d.BaseCtx, d.Repos.ConfigRepo, d.Repos.LogRepo, dispatcher, planner, selector, d.Log),
		Composer:      NewComposerService(d.Generator, dispatcher, d.Repos.ConfigRepo, d.GenerateTimeout),
		Settings:      NewSettingsService(d.Repos.ConfigRepo),
		ExecutionLog:  NewExecutionLogService(d.Repos.LogRepo),
		Authorization: NewAuthService(d.Repos.Auth, d.AuthSigningKey),
	}
}
