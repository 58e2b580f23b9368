package models

import "time"

// ModeLabel is the human-readable outcome stored in the mode column of the history table.
type ModeLabel string

const (
	LabelPending          ModeLabel = ""
	LabelArmed            ModeLabel = "Armed Mode"
	LabelWindy            ModeLabel = "Windy Mode"
	LabelModeChangeFailed ModeLabel = "Mode Change Failed"
)

// Valid reports whether l is one of the three labels a finished cycle can leave behind.
func (l ModeLabel) Valid() bool {
	switch l {
	case LabelArmed, LabelWindy, LabelModeChangeFailed:
		return true
	default:
		return false
	}
}

// HistoryRecord is one row of the threshold-crossing log.
type HistoryRecord struct {
	ID           string    `json:"id"`
	Seq          int64     `json:"seq"`            // insertion order; higher is newer
	WindSpeedMph float64   `json:"wind_speed_mph"` // mph
	RecordedAt   time.Time `json:"recorded_at"`
	ModeLabel    ModeLabel `json:"mode_label"`
}

// WindReading is a single successful observation from the weather service.
type WindReading struct {
	SpeedMph   float64   `json:"speed_mph"`
	ObservedAt time.Time `json:"observed_at"`
}
