package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"windguard/internal/models"
	"windguard/internal/repository"
	"windguard/internal/repository/db"
)

func openTestDB(t *testing.T) *repository.HistorySQLite {
	t.Helper()
	conn, err := db.InitDB(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return repository.NewHistorySQLite(conn)
}

func TestHistorySQLite_CapacityAndOrder(t *testing.T) {
	repo := openTestDB(t)
	c := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	const capacity = 100
	for i := 0; i < capacity; i++ {
		_, err := repo.Prepend(c, models.HistoryRecord{
			WindSpeedMph: float64(i),
			RecordedAt:   base.Add(time.Duration(i) * time.Minute),
			ModeLabel:    models.LabelArmed,
		}, capacity)
		if err != nil {
			t.Fatalf("Prepend %d: %v", i, err)
		}
	}
	if n, _ := repo.Count(c); n != capacity {
		t.Fatalf("count after fill: got %d, want %d", n, capacity)
	}

	// one more crossing: size stays at capacity and the oldest row (speed 0) is gone
	if _, err := repo.Prepend(c, models.HistoryRecord{WindSpeedMph: 999, RecordedAt: base.Add(time.Hour * 24)}, capacity); err != nil {
		t.Fatalf("Prepend overflow: %v", err)
	}
	n, err := repo.Count(c)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != capacity {
		t.Fatalf("count after overflow: got %d, want %d", n, capacity)
	}

	all, err := repo.List(c, repository.HistoryFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if all[0].WindSpeedMph != 999 {
		t.Fatalf("newest first: got %v", all[0].WindSpeedMph)
	}
	if last := all[len(all)-1]; last.WindSpeedMph != 1 {
		t.Fatalf("oldest surviving row: got %v, want 1", last.WindSpeedMph)
	}
}

func TestHistorySQLite_UpdateLatestLabel_OnlyTouchesNewest(t *testing.T) {
	repo := openTestDB(t)
	c := context.Background()

	if _, err := repo.Prepend(c, models.HistoryRecord{WindSpeedMph: 3, ModeLabel: models.LabelArmed}, 100); err != nil {
		t.Fatalf("Prepend: %v", err)
	}
	if _, err := repo.Prepend(c, models.HistoryRecord{WindSpeedMph: 8}, 100); err != nil {
		t.Fatalf("Prepend: %v", err)
	}
	if err := repo.UpdateLatestLabel(c, models.LabelWindy); err != nil {
		t.Fatalf("UpdateLatestLabel: %v", err)
	}

	all, err := repo.List(c, repository.HistoryFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 || all[0].ModeLabel != models.LabelWindy || all[1].ModeLabel != models.LabelArmed {
		t.Fatalf("unexpected labels: %+v", all)
	}

	latest, ok, err := repo.Latest(c)
	if err != nil || !ok || latest.WindSpeedMph != 8 {
		t.Fatalf("Latest: %+v ok=%v err=%v", latest, ok, err)
	}
}

func TestHistorySQLite_ReplaceLatest_KeepsRowCount(t *testing.T) {
	repo := openTestDB(t)
	c := context.Background()
	at := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

	if _, err := repo.Prepend(c, models.HistoryRecord{WindSpeedMph: 3, ModeLabel: models.LabelArmed}, 100); err != nil {
		t.Fatalf("Prepend: %v", err)
	}
	pending, err := repo.Prepend(c, models.HistoryRecord{WindSpeedMph: 8}, 100)
	if err != nil {
		t.Fatalf("Prepend: %v", err)
	}

	got, err := repo.ReplaceLatest(c, models.HistoryRecord{WindSpeedMph: 5, RecordedAt: at})
	if err != nil {
		t.Fatalf("ReplaceLatest: %v", err)
	}
	if got.Seq != pending.Seq || got.ID != pending.ID {
		t.Fatalf("row identity changed: got %+v, want seq %d id %s", got, pending.Seq, pending.ID)
	}
	if got.WindSpeedMph != 5 || !got.RecordedAt.Equal(at) {
		t.Fatalf("row not overwritten: %+v", got)
	}

	if n, _ := repo.Count(c); n != 2 {
		t.Fatalf("count: got %d, want 2", n)
	}
	all, err := repo.List(c, repository.HistoryFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if all[1].WindSpeedMph != 3 || all[1].ModeLabel != models.LabelArmed {
		t.Fatalf("older row touched: %+v", all[1])
	}
}
