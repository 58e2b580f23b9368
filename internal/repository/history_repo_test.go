package repository

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"windguard/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return c
}

func newHistoryMock(t *testing.T) (*HistorySQLite, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("mock expectations: %v", err)
		}
		_ = db.Close()
	})
	return NewHistorySQLite(db), mock
}

var historyCols = []string{"seq", "id", "recorded_at", "wind_speed_mph", "mode_label"}

func TestPrepend_InsertsAndTrimsInOneTx(t *testing.T) {
	t.Parallel()
	repo, mock := newHistoryMock(t)

	at := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(insertHistorySQL)).
		WithArgs(sqlmock.AnyArg(), at, 6.2, "").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec(regexp.QuoteMeta(trimHistorySQL)).
		WithArgs(100).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := repo.Prepend(ctx(t), models.HistoryRecord{WindSpeedMph: 6.2, RecordedAt: at}, 100)
	if err != nil {
		t.Fatalf("Prepend: %v", err)
	}
	if got.Seq != 42 || got.ID == "" {
		t.Fatalf("expected seq 42 and generated id, got %+v", got)
	}
	if !got.RecordedAt.Equal(at) {
		t.Fatalf("recorded at: %v", got.RecordedAt)
	}
}

func TestPrepend_TrimErrorRollsBack(t *testing.T) {
	t.Parallel()
	repo, mock := newHistoryMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(insertHistorySQL)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(trimHistorySQL)).
		WillReturnError(errors.New("locked"))
	mock.ExpectRollback()

	_, err := repo.Prepend(ctx(t), models.HistoryRecord{ID: "r1", WindSpeedMph: 3}, 100)
	if err == nil || !strings.Contains(err.Error(), "trim history") {
		t.Fatalf("expected trim error, got %v", err)
	}
}

func TestUpdateLatestLabel(t *testing.T) {
	t.Parallel()

	t.Run("updates newest row", func(t *testing.T) {
		repo, mock := newHistoryMock(t)
		mock.ExpectExec(regexp.QuoteMeta(updateLatestLabelSQL)).
			WithArgs("Windy Mode").
			WillReturnResult(sqlmock.NewResult(0, 1))
		if err := repo.UpdateLatestLabel(ctx(t), models.LabelWindy); err != nil {
			t.Fatalf("UpdateLatestLabel: %v", err)
		}
	})

	t.Run("empty table", func(t *testing.T) {
		repo, mock := newHistoryMock(t)
		mock.ExpectExec(regexp.QuoteMeta(updateLatestLabelSQL)).
			WithArgs("Armed Mode").
			WillReturnResult(sqlmock.NewResult(0, 0))
		if err := repo.UpdateLatestLabel(ctx(t), models.LabelArmed); !errors.Is(err, errNoHistory) {
			t.Fatalf("expected errNoHistory, got %v", err)
		}
	})
}

func TestReplaceLatest(t *testing.T) {
	t.Parallel()
	at := time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)

	t.Run("overwrites newest row and reloads it", func(t *testing.T) {
		repo, mock := newHistoryMock(t)
		mock.ExpectExec(regexp.QuoteMeta(replaceLatestSQL)).
			WithArgs(at, 4.5, "").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(regexp.QuoteMeta(selectLatestHistorySQL)).
			WillReturnRows(sqlmock.NewRows(historyCols).AddRow(7, "r7", at, 4.5, ""))

		rec, err := repo.ReplaceLatest(ctx(t), models.HistoryRecord{WindSpeedMph: 4.5, RecordedAt: at})
		if err != nil {
			t.Fatalf("ReplaceLatest: %v", err)
		}
		if rec.Seq != 7 || rec.ID != "r7" || rec.WindSpeedMph != 4.5 || rec.ModeLabel.Valid() {
			t.Fatalf("unexpected record: %+v", rec)
		}
	})

	t.Run("empty table", func(t *testing.T) {
		repo, mock := newHistoryMock(t)
		mock.ExpectExec(regexp.QuoteMeta(replaceLatestSQL)).
			WithArgs(at, 4.5, "").
			WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := repo.ReplaceLatest(ctx(t), models.HistoryRecord{WindSpeedMph: 4.5, RecordedAt: at})
		if !errors.Is(err, errNoHistory) {
			t.Fatalf("expected errNoHistory, got %v", err)
		}
	})
}

func TestLatest(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

	t.Run("returns newest", func(t *testing.T) {
		repo, mock := newHistoryMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(selectLatestHistorySQL)).
			WillReturnRows(sqlmock.NewRows(historyCols).AddRow(9, "r9", now, 7.0, "Windy Mode"))

		rec, ok, err := repo.Latest(ctx(t))
		if err != nil || !ok {
			t.Fatalf("Latest: ok=%v err=%v", ok, err)
		}
		if rec.Seq != 9 || rec.WindSpeedMph != 7.0 || rec.ModeLabel != models.LabelWindy {
			t.Fatalf("unexpected record: %+v", rec)
		}
	})

	t.Run("empty table", func(t *testing.T) {
		repo, mock := newHistoryMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(selectLatestHistorySQL)).
			WillReturnRows(sqlmock.NewRows(historyCols))

		_, ok, err := repo.Latest(ctx(t))
		if err != nil || ok {
			t.Fatalf("expected empty, got ok=%v err=%v", ok, err)
		}
	})
}

func TestList_WithFilters(t *testing.T) {
	t.Parallel()
	repo, mock := newHistoryMock(t)

	from := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)

	query := selectHistoryColumns + ` WHERE recorded_at >= ? AND recorded_at <= ? AND mode_label = ? ORDER BY seq DESC LIMIT ?`
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(from, to, "Mode Change Failed", 10).
		WillReturnRows(sqlmock.NewRows(historyCols).
			AddRow(5, "r5", to, 2.0, "Mode Change Failed").
			AddRow(3, "r3", from, 8.0, "Mode Change Failed"))

	got, err := repo.List(ctx(t), HistoryFilter{From: from, To: to, Label: models.LabelModeChangeFailed, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].Seq != 5 || got[1].Seq != 3 {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestList_NoFilters_ScanError(t *testing.T) {
	t.Parallel()
	repo, mock := newHistoryMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectHistoryColumns + ` ORDER BY seq DESC`)).
		WillReturnRows(sqlmock.NewRows(historyCols).AddRow(1, "r1", 123, 2.0, ""))

	if _, err := repo.List(ctx(t), HistoryFilter{}); err == nil {
		t.Fatalf("expected scan error")
	}
}
