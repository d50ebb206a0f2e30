package hub

import (
	"reflect"
	"slices"
)

// Snapshot is the externally visible hub state. It is immutable once
// published; sinks and dashboard clients only ever see copies.
type Snapshot struct {
	Mode                 Mode     `json:"mode"`
	HubName              string   `json:"hub_name"`
	ActiveCount          uint64   `json:"active_count"`
	AutoCount            uint64   `json:"auto_count"`
	InactiveCount        uint64   `json:"inactive_count"`
	MilestonesFired      []string `json:"milestones_fired"`
	PLCConnected         bool     `json:"plc_connected"`
	TelemetryConnected   bool     `json:"telemetry_connected"`
	LightingSourceActive bool     `json:"lighting_source_active"`
	MotorsRunning        bool     `json:"motors_running"`
	FMSPeriod            string   `json:"fms_period"`
	SecondsUntilInactive float64  `json:"seconds_until_inactive"`
	SimulatorEnabled     bool     `json:"simulator_enabled"`
	LEDColor             string   `json:"led_color"`
	BallsDropped         uint64   `json:"balls_dropped"`
}

// equal reports whether two snapshots carry the same values. Used to
// suppress duplicate broadcasts.
func (s Snapshot) equal(o Snapshot) bool {
	if !slices.Equal(s.MilestonesFired, o.MilestonesFired) {
		return false
	}
	s.MilestonesFired, o.MilestonesFired = nil, nil
	return reflect.DeepEqual(s, o)
}
