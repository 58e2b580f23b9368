package models

// TargetMode is the camera profile a poll cycle asks for.
type TargetMode int

const (
	ArmedMode TargetMode = iota
	WindyMode
)

func (m TargetMode) String() string {
	if m == WindyMode {
		return "windy"
	}
	return "armed"
}

// Label returns the history label written when m is applied successfully.
func (m TargetMode) Label() ModeLabel {
	if m == WindyMode {
		return LabelWindy
	}
	return LabelArmed
}

// ModeChangeOutcome is the single terminal result of one mode-change attempt.
type ModeChangeOutcome struct {
	Target  TargetMode `json:"-"`
	Applied bool       `json:"applied"`
	Reason  error      `json:"-"`
}

// Label collapses every failure kind into LabelModeChangeFailed.
func (o ModeChangeOutcome) Label() ModeLabel {
	if !o.Applied {
		return LabelModeChangeFailed
	}
	return o.Target.Label()
}

// DeviceInfo identifies the base station found during discovery.
type DeviceInfo struct {
	DeviceID    string `json:"device_id"`
	CloudID     string `json:"cloud_id"`
	OwnerUserID string `json:"owner_user_id"`
}

// Session holds the vendor credentials for the lifetime of one mode change.
type Session struct {
	AuthToken     string
	SessionCookie string
}
