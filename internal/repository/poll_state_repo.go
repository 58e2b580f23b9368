package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"windguard/internal/models"
)

type PollStateSQLite struct {
	db *sql.DB
}

func NewPollStateSQLite(db *sql.DB) *PollStateSQLite {
	return &PollStateSQLite{db: db}
}

const (
	pollStateRowID = 1

	upsertPollStateSQL = `
		INSERT INTO poll_state (id, last_polled_at, last_wind_mph, last_result, last_error, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			last_polled_at=excluded.last_polled_at,
			last_wind_mph=excluded.last_wind_mph,
			last_result=excluded.last_result,
			last_error=excluded.last_error,
			updated_at=excluded.updated_at
	`

	selectPollStateSQL = `
		SELECT id, last_polled_at, last_wind_mph, last_result, last_error, updated_at
		FROM poll_state WHERE id=?
	`
)

// Save upserts the single poll_state row (id always 1).
func (r *PollStateSQLite) Save(ctx context.Context, s models.PollState) error {
	ts := s.UpdatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	} else {
		ts = ts.UTC()
	}

	var lastErr *string
	if s.LastError != "" {
		lastErr = &s.LastError
	}

	_, err := r.db.ExecContext(ctx, upsertPollStateSQL,
		pollStateRowID,
		s.LastPolledAt.UTC(),
		s.LastWindSpeedMph,
		s.LastResult,
		lastErr,
		ts,
	)
	return err
}

// Load fetches the poll_state row; a zero value (ID 0) means nothing polled yet.
func (r *PollStateSQLite) Load(ctx context.Context) (models.PollState, error) {
	row := r.db.QueryRowContext(ctx, selectPollStateSQL, pollStateRowID)

	var (
		s       models.PollState
		wind    sql.NullFloat64
		lastErr sql.NullString
	)
	if err := row.Scan(&s.ID, &s.LastPolledAt, &wind, &s.LastResult, &lastErr, &s.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PollState{}, nil // nothing polled yet
		}
		return models.PollState{}, err
	}
	s.LastWindSpeedMph = wind.Float64
	s.LastError = lastErr.String
	s.LastPolledAt = s.LastPolledAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}
