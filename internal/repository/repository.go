package repository

import (
	"context"
	"database/sql"
	"time"

	"windguard/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.Operator, error)
}

// HistoryFilter narrows History.List. Zero values mean "no bound".
type HistoryFilter struct {
	From  time.Time
	To    time.Time
	Label models.ModeLabel
	Limit int
}

// HistoryRepo is the table-storage facility behind the crossing log.
type HistoryRepo interface {
	Prepend(ctx context.Context, rec models.HistoryRecord, capacity int) (models.HistoryRecord, error)
	UpdateLatestLabel(ctx context.Context, label models.ModeLabel) error
	ReplaceLatest(ctx context.Context, rec models.HistoryRecord) (models.HistoryRecord, error)
	Latest(ctx context.Context) (models.HistoryRecord, bool, error)
	List(ctx context.Context, f HistoryFilter) ([]models.HistoryRecord, error)
	Count(ctx context.Context) (int, error)
}

type PollStateRepo interface {
	Save(ctx context.Context, s models.PollState) error
	Load(ctx context.Context) (models.PollState, error)
}

type Repository struct {
	History   HistoryRepo
	PollState PollStateRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		History:   NewHistorySQLite(db),
		PollState: NewPollStateSQLite(db),
		Auth:      NewOperatorRepository(db),
	}
}
