package hub

import "testing"

func TestCategorize(t *testing.T) {
	tests := []struct {
		name           string
		mode           Mode
		period         string
		hubActive      bool
		hubActiveKnown bool
		want           counterKind
	}{
		{"fms auto period", ModeFMS, "auto", false, false, countAuto},
		{"fms teleop active", ModeFMS, "teleop", true, true, countActive},
		{"fms teleop inactive", ModeFMS, "teleop", false, true, countInactive},
		{"fms no signals", ModeFMS, "disabled", false, false, countActive},
		{"teleop auto beats inactive", ModeRobotTeleop, "auto", false, true, countAuto},
		{"teleop inactive", ModeRobotTeleop, "teleop", false, true, countInactive},
		{"teleop active", ModeRobotTeleop, "teleop", true, true, countActive},
		{"teleop unknown activity", ModeRobotTeleop, "disabled", false, false, countActive},
		{"practice inactive", ModeRobotPractice, "teleop", false, true, countInactive},
		{"adhoc ignores period", ModeAdhoc, "auto", false, true, countActive},
		{"adhoc ignores inactive", ModeAdhoc, "teleop", false, true, countActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := categorize(tt.mode, tt.period, tt.hubActive, tt.hubActiveKnown)
			if got != tt.want {
				t.Errorf("categorize(%s, %q, %v, %v) = %d, want %d",
					tt.mode, tt.period, tt.hubActive, tt.hubActiveKnown, got, tt.want)
			}
		})
	}
}
