package service

import (
	"context"
	"errors"
	"fmt"

	"windguard/internal/arlo"
	"windguard/internal/config"
	"windguard/internal/logger"
	"windguard/internal/models"
)

// Failure kinds of a mode change. All of them end up as LabelModeChangeFailed.
var (
	ErrLogin           = errors.New("vendor login failed")
	ErrDeviceDiscovery = errors.New("base station discovery failed")
	ErrModeChange      = errors.New("mode change request failed")
)

const unknownDeviceID = "none"

// VendorAPI is the camera vendor's cloud service.
type VendorAPI interface {
	Login(ctx context.Context, email, password string) (models.Session, error)
	Devices(ctx context.Context, s models.Session) ([]arlo.Device, error)
	Notify(ctx context.Context, s models.Session, dev models.DeviceInfo, mode string) error
	Logout(ctx context.Context, s models.Session, cloudID string) error
}

// ModeState is a step of one mode-change attempt.
type ModeState int

const (
	StateLoggedOut ModeState = iota
	StateLoggedIn
	StateDeviceFound
	StateModeSet
	StateFailed
)

func (s ModeState) String() string {
	switch s {
	case StateLoggedOut:
		return "logged_out"
	case StateLoggedIn:
		return "logged_in"
	case StateDeviceFound:
		return "device_found"
	case StateModeSet:
		return "mode_set"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ModeControllerService applies a target mode to the account's base station.
type ModeControllerService struct {
	api VendorAPI
	cfg config.Arlo
	log *logger.Logger
}

func NewModeControllerService(api VendorAPI, cfg config.Arlo, log *logger.Logger) *ModeControllerService {
	return &ModeControllerService{api: api, cfg: cfg, log: log}
}

// ModeString maps a target to the vendor's mode identifier.
func (s *ModeControllerService) ModeString(target models.TargetMode) string {
	if target == models.WindyMode {
		return s.cfg.WindyMode
	}
	return s.cfg.ArmedMode
}

// SetMode runs login, discovery and notify, then logs out if login succeeded.
// It always returns exactly one outcome.
func (s *ModeControllerService) SetMode(ctx context.Context, target models.TargetMode) models.ModeChangeOutcome {
	mc := &modeChange{api: s.api, cfg: s.cfg, log: s.log}

	err := mc.login(ctx)
	if err == nil {
		if err = mc.discover(ctx); err == nil {
			err = mc.notify(ctx, s.ModeString(target))
		}
		mc.logout(ctx)
	}

	out := models.ModeChangeOutcome{Target: target, Applied: mc.state == StateModeSet, Reason: err}
	if err != nil {
		s.log.Warnw("mode_change_failed", "target", target.String(), "state", mc.state.String(), "err", err)
	} else {
		s.log.Infow("mode_changed", "target", target.String(), "device", mc.device.DeviceID)
	}
	return out
}

// modeChange holds the transient session and device of a single attempt.
type modeChange struct {
	api VendorAPI
	cfg config.Arlo
	log *logger.Logger

	state    ModeState
	loggedIn bool
	session  models.Session
	device   models.DeviceInfo
}

func (m *modeChange) fail(kind, err error) error {
	m.state = StateFailed
	return fmt.Errorf("%w: %v", kind, err)
}

func (m *modeChange) login(ctx context.Context) error {
	if m.state != StateLoggedOut {
		return fmt.Errorf("%w: login from state %s", ErrLogin, m.state)
	}
	sess, err := m.api.Login(ctx, m.cfg.Email, m.cfg.Password)
	if err != nil {
		return m.fail(ErrLogin, err)
	}
	m.session = sess
	m.loggedIn = true
	m.state = StateLoggedIn
	return nil
}

// discover picks the last base station in the device list.
func (m *modeChange) discover(ctx context.Context) error {
	if m.state != StateLoggedIn {
		return fmt.Errorf("%w: discover from state %s", ErrDeviceDiscovery, m.state)
	}
	devices, err := m.api.Devices(ctx, m.session)
	if err != nil {
		return m.fail(ErrDeviceDiscovery, err)
	}

	found := false
	for _, d := range devices {
		if d.DeviceType == arlo.DeviceTypeBaseStation {
			m.device = models.DeviceInfo{DeviceID: d.DeviceID, CloudID: d.XCloudID, OwnerUserID: d.UserID}
			found = true
		}
	}
	if !found {
		if !m.cfg.LegacyUnguardedDiscovery {
			return m.fail(ErrDeviceDiscovery, fmt.Errorf("no %s among %d devices", arlo.DeviceTypeBaseStation, len(devices)))
		}
		m.log.Warnw("basestation_not_found_legacy_notify", "device", unknownDeviceID)
		m.device = models.DeviceInfo{DeviceID: unknownDeviceID}
	}
	m.state = StateDeviceFound
	return nil
}

func (m *modeChange) notify(ctx context.Context, mode string) error {
	if m.state != StateDeviceFound {
		return fmt.Errorf("%w: notify from state %s", ErrModeChange, m.state)
	}
	if err := m.api.Notify(ctx, m.session, m.device, mode); err != nil {
		return m.fail(ErrModeChange, err)
	}
	m.state = StateModeSet
	return nil
}

// logout runs once login has succeeded, whatever happened after it,
// including cancellation of ctx.
func (m *modeChange) logout(ctx context.Context) {
	if !m.loggedIn {
		return
	}
	if err := m.api.Logout(context.WithoutCancel(ctx), m.session, m.device.CloudID); err != nil {
		m.log.Debugw("vendor_logout_failed", "err", err)
	}
}
