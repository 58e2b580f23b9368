package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"windguard/internal/models"

	"github.com/google/uuid"
)

type HistorySQLite struct {
	db *sql.DB
}

func NewHistorySQLite(db *sql.DB) *HistorySQLite { return &HistorySQLite{db: db} }

var _ HistoryRepo = (*HistorySQLite)(nil)

const (
	insertHistorySQL = `INSERT INTO history_records (id, recorded_at, wind_speed_mph, mode_label) VALUES (?, ?, ?, ?)`

	// keeps the newest `capacity` rows, dropping whatever fell off the bottom
	trimHistorySQL = `DELETE FROM history_records WHERE seq NOT IN (SELECT seq FROM history_records ORDER BY seq DESC LIMIT ?)`

	updateLatestLabelSQL = `UPDATE history_records SET mode_label = ? WHERE seq = (SELECT MAX(seq) FROM history_records)`

	replaceLatestSQL = `UPDATE history_records SET recorded_at = ?, wind_speed_mph = ?, mode_label = ? WHERE seq = (SELECT MAX(seq) FROM history_records)`

	selectHistoryColumns = `SELECT seq, id, recorded_at, wind_speed_mph, mode_label FROM history_records`

	selectLatestHistorySQL = selectHistoryColumns + ` ORDER BY seq DESC LIMIT 1`

	countHistorySQL = `SELECT COUNT(*) FROM history_records`
)

var errNoHistory = errors.New("history is empty")

// Prepend inserts rec as the newest row and trims the table to capacity, atomically.
// ID and RecordedAt are filled in when empty.
func (r *HistorySQLite) Prepend(ctx context.Context, rec models.HistoryRecord, capacity int) (models.HistoryRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	} else {
		rec.RecordedAt = rec.RecordedAt.UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.HistoryRecord{}, fmt.Errorf("begin prepend: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, insertHistorySQL, rec.ID, rec.RecordedAt, rec.WindSpeedMph, string(rec.ModeLabel))
	if err != nil {
		return models.HistoryRecord{}, fmt.Errorf("insert history record: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return models.HistoryRecord{}, fmt.Errorf("history record seq: %w", err)
	}
	rec.Seq = seq

	if _, err := tx.ExecContext(ctx, trimHistorySQL, capacity); err != nil {
		return models.HistoryRecord{}, fmt.Errorf("trim history to %d: %w", capacity, err)
	}
	if err := tx.Commit(); err != nil {
		return models.HistoryRecord{}, fmt.Errorf("commit prepend: %w", err)
	}
	return rec, nil
}

// UpdateLatestLabel overwrites the mode label of the newest row.
func (r *HistorySQLite) UpdateLatestLabel(ctx context.Context, label models.ModeLabel) error {
	res, err := r.db.ExecContext(ctx, updateLatestLabelSQL, string(label))
	if err != nil {
		return fmt.Errorf("update latest label: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update latest label: %w", err)
	}
	if n == 0 {
		return errNoHistory
	}
	return nil
}

// ReplaceLatest overwrites the reading and label of the newest row in place,
// keeping its seq and id, and returns the row as stored.
func (r *HistorySQLite) ReplaceLatest(ctx context.Context, rec models.HistoryRecord) (models.HistoryRecord, error) {
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, replaceLatestSQL, rec.RecordedAt.UTC(), rec.WindSpeedMph, string(rec.ModeLabel))
	if err != nil {
		return models.HistoryRecord{}, fmt.Errorf("replace latest record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.HistoryRecord{}, fmt.Errorf("replace latest record: %w", err)
	}
	if n == 0 {
		return models.HistoryRecord{}, errNoHistory
	}

	out, ok, err := r.Latest(ctx)
	if err != nil {
		return models.HistoryRecord{}, fmt.Errorf("reload latest record: %w", err)
	}
	if !ok {
		return models.HistoryRecord{}, errNoHistory
	}
	return out, nil
}

// Latest returns the newest row; ok is false on an empty table.
func (r *HistorySQLite) Latest(ctx context.Context) (models.HistoryRecord, bool, error) {
	rec, err := scanHistory(r.db.QueryRowContext(ctx, selectLatestHistorySQL))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.HistoryRecord{}, false, nil
		}
		return models.HistoryRecord{}, false, err
	}
	return rec, true, nil
}

// List returns rows matching f, newest first.
func (r *HistorySQLite) List(ctx context.Context, f HistoryFilter) ([]models.HistoryRecord, error) {
	var (
		conds []string
		args  []any
	)

	if !f.From.IsZero() {
		conds = append(conds, "recorded_at >= ?")
		args = append(args, f.From.UTC())
	}
	if !f.To.IsZero() {
		conds = append(conds, "recorded_at <= ?")
		args = append(args, f.To.UTC())
	}
	if f.Label != models.LabelPending {
		conds = append(conds, "mode_label = ?")
		args = append(args, string(f.Label))
	}

	q := selectHistoryColumns
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY seq DESC"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.HistoryRecord, 0, 16)
	for rows.Next() {
		rec, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *HistorySQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countHistorySQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHistory(row rowScanner) (models.HistoryRecord, error) {
	var (
		rec   models.HistoryRecord
		label string
	)
	if err := row.Scan(&rec.Seq, &rec.ID, &rec.RecordedAt, &rec.WindSpeedMph, &label); err != nil {
		return models.HistoryRecord{}, err
	}
	rec.RecordedAt = rec.RecordedAt.UTC()
	rec.ModeLabel = models.ModeLabel(label)
	return rec, nil
}
