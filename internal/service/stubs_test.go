package service

import (
	"context"
	"errors"
	"time"

	"windguard/internal/arlo"
	"windguard/internal/models"
	"windguard/internal/repository"
)

// ---- Test doubles ----

// historyRepoStub keeps records newest-first in memory, like the SQLite table.
type historyRepoStub struct {
	records  []models.HistoryRecord
	nextSeq  int64
	failWith error

	prepends     int
	replaces     int
	labelUpdates []models.ModeLabel
	lastFilter   repository.HistoryFilter
}

func (h *historyRepoStub) Prepend(ctx context.Context, rec models.HistoryRecord, capacity int) (models.HistoryRecord, error) {
	if h.failWith != nil {
		return models.HistoryRecord{}, h.failWith
	}
	h.prepends++
	h.nextSeq++
	rec.Seq = h.nextSeq
	if rec.ID == "" {
		rec.ID = "rec"
	}
	h.records = append([]models.HistoryRecord{rec}, h.records...)
	if len(h.records) > capacity {
		h.records = h.records[:capacity]
	}
	return rec, nil
}

// UpdateLatestLabel fails on a canceled context the way database/sql does.
func (h *historyRepoStub) UpdateLatestLabel(ctx context.Context, label models.ModeLabel) error {
	if h.failWith != nil {
		return h.failWith
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	h.labelUpdates = append(h.labelUpdates, label)
	if len(h.records) > 0 {
		h.records[0].ModeLabel = label
	}
	return nil
}

func (h *historyRepoStub) ReplaceLatest(ctx context.Context, rec models.HistoryRecord) (models.HistoryRecord, error) {
	if h.failWith != nil {
		return models.HistoryRecord{}, h.failWith
	}
	if len(h.records) == 0 {
		return models.HistoryRecord{}, errors.New("history is empty")
	}
	h.replaces++
	top := &h.records[0]
	top.WindSpeedMph = rec.WindSpeedMph
	top.RecordedAt = rec.RecordedAt
	top.ModeLabel = rec.ModeLabel
	return *top, nil
}

func (h *historyRepoStub) Latest(ctx context.Context) (models.HistoryRecord, bool, error) {
	if h.failWith != nil {
		return models.HistoryRecord{}, false, h.failWith
	}
	if len(h.records) == 0 {
		return models.HistoryRecord{}, false, nil
	}
	return h.records[0], true, nil
}

func (h *historyRepoStub) List(ctx context.Context, f repository.HistoryFilter) ([]models.HistoryRecord, error) {
	h.lastFilter = f
	return h.records, h.failWith
}

func (h *historyRepoStub) Count(ctx context.Context) (int, error) {
	return len(h.records), h.failWith
}

// seed puts speeds into the stub oldest first, each with a finished label.
func (h *historyRepoStub) seed(speeds ...float64) {
	for _, s := range speeds {
		h.nextSeq++
		h.records = append([]models.HistoryRecord{{
			ID:           "seed",
			Seq:          h.nextSeq,
			WindSpeedMph: s,
			RecordedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			ModeLabel:    models.LabelArmed,
		}}, h.records...)
	}
}

type pollStateStub struct {
	saves []models.PollState
	state models.PollState
	err   error
}

func (p *pollStateStub) Save(ctx context.Context, s models.PollState) error {
	p.saves = append(p.saves, s)
	p.state = s
	return p.err
}

func (p *pollStateStub) Load(ctx context.Context) (models.PollState, error) {
	return p.state, p.err
}

type weatherStub struct {
	reading models.WindReading
	err     error
	calls   int
}

func (w *weatherStub) FetchWindSpeed(ctx context.Context) (models.WindReading, error) {
	w.calls++
	return w.reading, w.err
}

// vendorStub records every call against the camera vendor.
type vendorStub struct {
	loginErr   error
	devices    []arlo.Device
	devicesErr error
	notifyErr  error
	logoutErr  error

	calls        []string
	notifiedDev  models.DeviceInfo
	notifiedTo   string
	logoutCloud  string
	logoutCtxErr error
}

func (v *vendorStub) Login(ctx context.Context, email, password string) (models.Session, error) {
	v.calls = append(v.calls, "login")
	if v.loginErr != nil {
		return models.Session{}, v.loginErr
	}
	return models.Session{AuthToken: "tok", SessionCookie: "JSESSIONID=abc"}, nil
}

func (v *vendorStub) Devices(ctx context.Context, s models.Session) ([]arlo.Device, error) {
	v.calls = append(v.calls, "devices")
	return v.devices, v.devicesErr
}

func (v *vendorStub) Notify(ctx context.Context, s models.Session, dev models.DeviceInfo, mode string) error {
	v.calls = append(v.calls, "notify")
	v.notifiedDev = dev
	v.notifiedTo = mode
	return v.notifyErr
}

func (v *vendorStub) Logout(ctx context.Context, s models.Session, cloudID string) error {
	v.calls = append(v.calls, "logout")
	v.logoutCloud = cloudID
	v.logoutCtxErr = ctx.Err()
	return v.logoutErr
}

var errBoom = errors.New("boom")

func baseStation(id string) arlo.Device {
	return arlo.Device{DeviceType: arlo.DeviceTypeBaseStation, DeviceID: id, XCloudID: "cloud-" + id, UserID: "user-" + id}
}
