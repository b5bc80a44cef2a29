package models

import "time"

// ViolationEvent is the stream record emitted per offending unit.
type ViolationEvent struct {
	RunID      string    `json:"run_id"`
	UnitID     int64     `json:"unit_id"`
	UnitLabel  string    `json:"unit_label"`
	Messages   []string  `json:"messages"`
	DetectedAt time.Time `json:"detected_at"`
}
