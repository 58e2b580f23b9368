package service

import (
	"context"
	"fmt"

	"windguard/internal/config"
	"windguard/internal/models"
	"windguard/internal/repository"
)

// StatusReport is a read-only snapshot of the poller and its log.
type StatusReport struct {
	PollState    models.PollState      `json:"poll_state"`
	Latest       *models.HistoryRecord `json:"latest,omitempty"`
	HistoryCount int                   `json:"history_count"`
	Capacity     int                   `json:"capacity"`
	ThresholdMph float64               `json:"threshold_mph"`
	ArmedMode    string                `json:"armed_mode"`
	WindyMode    string                `json:"windy_mode"`
	Interval     string                `json:"interval"`
}

type StatusService struct {
	pollState repository.PollStateRepo
	history   repository.HistoryRepo
	cfg       *config.Config
}

func NewStatusService(pollState repository.PollStateRepo, history repository.HistoryRepo, cfg *config.Config) *StatusService {
	return &StatusService{pollState: pollState, history: history, cfg: cfg}
}

func (s *StatusService) GetStatus(ctx context.Context) (StatusReport, error) {
	st, err := s.pollState.Load(ctx)
	if err != nil {
		return StatusReport{}, fmt.Errorf("load poll state: %w", err)
	}
	count, err := s.history.Count(ctx)
	if err != nil {
		return StatusReport{}, fmt.Errorf("count history: %w", err)
	}

	rep := StatusReport{
		PollState:    st,
		HistoryCount: count,
		Capacity:     s.cfg.HistoryCapacity,
		ThresholdMph: s.cfg.Poll.WindThresholdMph,
		ArmedMode:    s.cfg.Arlo.ArmedMode,
		WindyMode:    s.cfg.Arlo.WindyMode,
		Interval:     s.cfg.Poll.Interval.String(),
	}

	latest, ok, err := s.history.Latest(ctx)
	if err != nil {
		return StatusReport{}, fmt.Errorf("load latest record: %w", err)
	}
	if ok {
		rep.Latest = &latest
	}
	return rep, nil
}
