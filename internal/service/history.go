package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"windguard/internal/models"
	"windguard/internal/repository"
)

const (
	DefaultHistoryCapacity = 100
	maxListLimit           = 1000
)

var (
	errInvalidTimeRange = errors.New("invalid time range: from must be <= to")
	errInvalidLabel     = errors.New("invalid label: must be Armed Mode, Windy Mode or Mode Change Failed")
	errInvalidLimit     = errors.New("invalid limit: must be >= 0")
)

// HistoryFilter narrows a history listing. Zero values mean "no bound".
type HistoryFilter struct {
	From  time.Time // inclusive
	To    time.Time // inclusive
	Label models.ModeLabel
	Limit int
}

// HistoryLogService is the capacity-bounded crossing log, newest first.
type HistoryLogService struct {
	repo     repository.HistoryRepo
	capacity int
}

func NewHistoryLogService(repo repository.HistoryRepo, capacity int) *HistoryLogService {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &HistoryLogService{repo: repo, capacity: capacity}
}

// RecordCrossing prepends a pending record and trims the table to capacity.
func (s *HistoryLogService) RecordCrossing(ctx context.Context, reading models.WindReading, at time.Time) (models.HistoryRecord, error) {
	rec, err := s.repo.Prepend(ctx, models.HistoryRecord{
		WindSpeedMph: reading.SpeedMph,
		RecordedAt:   at.UTC(),
		ModeLabel:    models.LabelPending,
	}, s.capacity)
	if err != nil {
		return models.HistoryRecord{}, fmt.Errorf("record crossing: %w", err)
	}
	return rec, nil
}

// ReplacePendingCrossing overwrites the newest record with reading and marks
// it pending again. The table size does not change.
func (s *HistoryLogService) ReplacePendingCrossing(ctx context.Context, reading models.WindReading, at time.Time) (models.HistoryRecord, error) {
	rec, err := s.repo.ReplaceLatest(ctx, models.HistoryRecord{
		WindSpeedMph: reading.SpeedMph,
		RecordedAt:   at.UTC(),
		ModeLabel:    models.LabelPending,
	})
	if err != nil {
		return models.HistoryRecord{}, fmt.Errorf("replace pending crossing: %w", err)
	}
	return rec, nil
}

func (s *HistoryLogService) UpdateLatestModeLabel(ctx context.Context, label models.ModeLabel) error {
	if err := s.repo.UpdateLatestLabel(ctx, label); err != nil {
		return fmt.Errorf("update latest label: %w", err)
	}
	return nil
}

// LatestWindSpeed reports the newest record's speed; ok is false on an empty table.
func (s *HistoryLogService) LatestWindSpeed(ctx context.Context) (float64, bool, error) {
	rec, ok, err := s.repo.Latest(ctx)
	if err != nil || !ok {
		return 0, false, err
	}
	return rec.WindSpeedMph, true, nil
}

func (s *HistoryLogService) Latest(ctx context.Context) (models.HistoryRecord, bool, error) {
	return s.repo.Latest(ctx)
}

func (s *HistoryLogService) Capacity() int {
	return s.capacity
}

func (s *HistoryLogService) List(ctx context.Context, f HistoryFilter) ([]models.HistoryRecord, error) {
	rf, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, rf)
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeAndValidateFilter prepares query parameters for the repository.
func normalizeAndValidateFilter(f HistoryFilter) (repository.HistoryFilter, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return repository.HistoryFilter{}, errInvalidTimeRange
	}
	if f.Label != models.LabelPending && !f.Label.Valid() {
		return repository.HistoryFilter{}, errInvalidLabel
	}
	if f.Limit < 0 {
		return repository.HistoryFilter{}, errInvalidLimit
	}
	limit := f.Limit
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return repository.HistoryFilter{From: from, To: to, Label: f.Label, Limit: limit}, nil
}

// IsFilterError reports whether err came from filter validation.
func IsFilterError(err error) bool {
	return errors.Is(err, errInvalidTimeRange) || errors.Is(err, errInvalidLabel) || errors.Is(err, errInvalidLimit)
}
