package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"windguard/internal/logger"
	"windguard/internal/models"
	"windguard/internal/repository"
)

// ErrSetup means the table could not be seeded at startup.
var ErrSetup = errors.New("setup failed")

// Poll results, also stored in the poll state row.
const (
	ResultSkipped    = "SKIPPED"
	ResultNoCrossing = "NO_CROSSING"
	ResultCrossed    = "CROSSED"
	ResultSeeded     = "SEEDED"
)

// WeatherSource returns the current wind speed.
type WeatherSource interface {
	FetchWindSpeed(ctx context.Context) (models.WindReading, error)
}

// ModeSetter applies a camera mode and reports the outcome.
type ModeSetter interface {
	SetMode(ctx context.Context, target models.TargetMode) models.ModeChangeOutcome
}

// CrossingLog is the part of the history log the poller writes to.
type CrossingLog interface {
	RecordCrossing(ctx context.Context, reading models.WindReading, at time.Time) (models.HistoryRecord, error)
	ReplacePendingCrossing(ctx context.Context, reading models.WindReading, at time.Time) (models.HistoryRecord, error)
	UpdateLatestModeLabel(ctx context.Context, label models.ModeLabel) error
	LatestWindSpeed(ctx context.Context) (float64, bool, error)
	Latest(ctx context.Context) (models.HistoryRecord, bool, error)
}

// PollResult describes what one poll cycle did.
type PollResult struct {
	Result    string                `json:"result"`
	Reading   *models.WindReading   `json:"reading,omitempty"`
	LastMph   *float64              `json:"last_mph,omitempty"`
	Target    string                `json:"target,omitempty"`
	ModeLabel models.ModeLabel      `json:"mode_label,omitempty"`
	Record    *models.HistoryRecord `json:"record,omitempty"`
	Error     string                `json:"error,omitempty"`
}

// Crossed reports whether the speed moved across threshold since last.
func Crossed(last, cur, threshold float64) bool {
	return (last >= threshold && cur < threshold) || (last < threshold && cur >= threshold)
}

// TargetFor picks windy mode at or above threshold, armed mode below it.
func TargetFor(speed, threshold float64) models.TargetMode {
	if speed >= threshold {
		return models.WindyMode
	}
	return models.ArmedMode
}

// PollerService runs poll cycles. Calls are serialized.
type PollerService struct {
	weather   WeatherSource
	modes     ModeSetter
	history   CrossingLog
	pollState repository.PollStateRepo
	threshold float64
	now       func() time.Time
	log       *logger.Logger

	mu sync.Mutex
}

func NewPollerService(
	weather WeatherSource,
	modes ModeSetter,
	history CrossingLog,
	pollState repository.PollStateRepo,
	threshold float64,
	log *logger.Logger,
) *PollerService {
	return &PollerService{
		weather:   weather,
		modes:     modes,
		history:   history,
		pollState: pollState,
		threshold: threshold,
		now:       time.Now,
		log:       log,
	}
}

// WithClock replaces the clock used to timestamp records.
func (p *PollerService) WithClock(now func() time.Time) *PollerService {
	p.now = now
	return p
}

// Poll runs one cycle. Weather and vendor failures are absorbed; only
// storage errors are returned.
func (p *PollerService) Poll(ctx context.Context) (PollResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now().UTC()
	reading, err := p.weather.FetchWindSpeed(ctx)
	if err != nil {
		p.log.Warnw("poll_skipped", "err", err)
		p.saveState(ctx, now, 0, ResultSkipped, err)
		return PollResult{Result: ResultSkipped, Error: err.Error()}, nil
	}

	last, ok, err := p.history.LatestWindSpeed(ctx)
	if err != nil {
		return PollResult{}, fmt.Errorf("load latest record: %w", err)
	}
	if !ok {
		p.log.Infow("history_empty_seeding", "wind_mph", reading.SpeedMph)
		res, err := p.apply(ctx, reading, now, ResultSeeded)
		if err != nil {
			return PollResult{}, err
		}
		p.saveState(ctx, now, reading.SpeedMph, ResultSeeded, nil)
		return res, nil
	}

	if !Crossed(last, reading.SpeedMph, p.threshold) {
		p.log.Debugw("poll_no_crossing", "last_mph", last, "wind_mph", reading.SpeedMph, "threshold", p.threshold)
		p.saveState(ctx, now, reading.SpeedMph, ResultNoCrossing, nil)
		return PollResult{Result: ResultNoCrossing, Reading: &reading, LastMph: &last}, nil
	}

	p.log.Infow("threshold_crossed", "last_mph", last, "wind_mph", reading.SpeedMph, "threshold", p.threshold)
	res, err := p.apply(ctx, reading, now, ResultCrossed)
	if err != nil {
		return PollResult{}, err
	}
	res.LastMph = &last
	p.saveState(ctx, now, reading.SpeedMph, ResultCrossed, nil)
	return res, nil
}

// SetUp seeds the table when the newest record is missing or carries no
// finished label. An unfinished newest record is overwritten in place.
// A weather failure here is returned wrapped in ErrSetup.
func (p *PollerService) SetUp(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	latest, ok, err := p.history.Latest(ctx)
	if err != nil {
		return fmt.Errorf("%w: load latest record: %v", ErrSetup, err)
	}
	if ok && latest.ModeLabel.Valid() {
		p.log.Infow("history_already_seeded", "wind_mph", latest.WindSpeedMph, "mode", latest.ModeLabel)
		return nil
	}

	now := p.now().UTC()
	reading, err := p.weather.FetchWindSpeed(ctx)
	if err != nil {
		p.saveState(ctx, now, 0, ResultSkipped, err)
		return fmt.Errorf("%w: %w", ErrSetup, err)
	}

	if ok {
		p.log.Infow("history_pending_reseeding", "seq", latest.Seq, "stale_mph", latest.WindSpeedMph, "wind_mph", reading.SpeedMph)
		rec, err := p.history.ReplacePendingCrossing(ctx, reading, now)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSetup, err)
		}
		if _, err := p.settle(ctx, rec, reading, ResultSeeded); err != nil {
			return fmt.Errorf("%w: %w", ErrSetup, err)
		}
	} else if _, err := p.apply(ctx, reading, now, ResultSeeded); err != nil {
		return fmt.Errorf("%w: %w", ErrSetup, err)
	}
	p.saveState(ctx, now, reading.SpeedMph, ResultSeeded, nil)
	return nil
}

// Run polls every tick until ctx is canceled.
func (p *PollerService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := p.Poll(ctx); err != nil {
				p.log.Errorw("poll_failed", "err", err)
			}
		}
	}
}

// apply records the reading, sets the mode for it and stores the outcome label.
func (p *PollerService) apply(ctx context.Context, reading models.WindReading, now time.Time, result string) (PollResult, error) {
	rec, err := p.history.RecordCrossing(ctx, reading, now)
	if err != nil {
		return PollResult{}, err
	}
	return p.settle(ctx, rec, reading, result)
}

// settle sets the mode for a pending record and stores the outcome label.
// Once the record exists the cycle runs to completion even if ctx is
// canceled, so the row never stays pending.
func (p *PollerService) settle(ctx context.Context, rec models.HistoryRecord, reading models.WindReading, result string) (PollResult, error) {
	ctx = context.WithoutCancel(ctx)

	target := TargetFor(reading.SpeedMph, p.threshold)
	outcome := p.modes.SetMode(ctx, target)
	label := outcome.Label()
	if err := p.history.UpdateLatestModeLabel(ctx, label); err != nil {
		return PollResult{}, err
	}
	rec.ModeLabel = label

	res := PollResult{
		Result:    result,
		Reading:   &reading,
		Target:    target.String(),
		ModeLabel: label,
		Record:    &rec,
	}
	if outcome.Reason != nil {
		res.Error = outcome.Reason.Error()
	}
	return res, nil
}

func (p *PollerService) saveState(ctx context.Context, now time.Time, speed float64, result string, cause error) {
	st := models.PollState{
		ID:               1,
		LastPolledAt:     now,
		LastWindSpeedMph: speed,
		LastResult:       result,
		UpdatedAt:        now,
	}
	if cause != nil {
		st.LastError = cause.Error()
	}
	if err := p.pollState.Save(ctx, st); err != nil {
		p.log.Warnw("poll_state_save_failed", "err", err)
	}
}
