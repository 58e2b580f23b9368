package service

import (
	"context"
	"time"

	"windguard/internal/arlo"
	"windguard/internal/config"
	"windguard/internal/logger"
	"windguard/internal/models"
	"windguard/internal/repository"
	"windguard/internal/weather"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// History exposes the crossing log for reads.
type History interface {
	List(ctx context.Context, f HistoryFilter) ([]models.HistoryRecord, error)
	Latest(ctx context.Context) (models.HistoryRecord, bool, error)
}

// Status exposes the last poll and the active configuration.
type Status interface {
	GetStatus(ctx context.Context) (StatusReport, error)
}

// Poller drives poll cycles. Stop Run via context cancellation.
type Poller interface {
	Poll(ctx context.Context) (PollResult, error)
	SetUp(ctx context.Context) error
	Run(ctx context.Context, tick time.Duration)
}

type Service struct {
	History
	Status
	Poller
	Authorization
}

// NewService builds the weather and vendor clients from cfg and wires them
// with the repository layer.
func NewService(repos *repository.Repository, cfg *config.Config, log *logger.Logger) *Service {
	history := NewHistoryLogService(repos.History, cfg.HistoryCapacity)
	modes := NewModeControllerService(arlo.NewClient(cfg.Arlo), cfg.Arlo, log)
	poller := NewPollerService(
		weather.NewClient(cfg.Weather),
		modes,
		history,
		repos.PollState,
		cfg.Poll.WindThresholdMph,
		log,
	)

	return &Service{
		History:       history,
		Status:        NewStatusService(repos.PollState, repos.History, cfg),
		Poller:        poller,
		Authorization: NewAuthService(repos.Auth, cfg.Auth),
	}
}
