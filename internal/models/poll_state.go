package models

import "time"

type PollState struct {
	ID               int       `json:"id"`
	LastPolledAt     time.Time `json:"last_polled_at"`
	LastWindSpeedMph float64   `json:"last_wind_speed_mph,omitempty"` // mph; zero if the last fetch failed
	LastResult       string    `json:"last_result"`                   // SKIPPED | NO_CROSSING | CROSSED | SEEDED
	LastError        string    `json:"last_error,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}
