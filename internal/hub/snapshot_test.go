package hub

import "testing"

func TestSnapshotEqual(t *testing.T) {
	base := Snapshot{
		Mode:            ModeAdhoc,
		HubName:         "RedHub",
		ActiveCount:     120,
		MilestonesFired: []string{"energized"},
		FMSPeriod:       "disabled",
		LEDColor:        "#ff0000",
	}

	if !base.equal(base) {
		t.Error("snapshot not equal to itself")
	}

	same := base
	same.MilestonesFired = []string{"energized"}
	if !base.equal(same) {
		t.Error("snapshots with equal milestone contents compare unequal")
	}

	diffs := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{"count", func(s *Snapshot) { s.ActiveCount++ }},
		{"mode", func(s *Snapshot) { s.Mode = ModeFMS }},
		{"milestones", func(s *Snapshot) { s.MilestonesFired = nil }},
		{"motors", func(s *Snapshot) { s.MotorsRunning = true }},
		{"led color", func(s *Snapshot) { s.LEDColor = "#000000" }},
	}
	for _, tt := range diffs {
		changed := base
		changed.MilestonesFired = append([]string(nil), base.MilestonesFired...)
		tt.mutate(&changed)
		if base.equal(changed) {
			t.Errorf("snapshots differing in %s compare equal", tt.name)
		}
	}
}

func TestSnapshotEqualDoesNotMutate(t *testing.T) {
	a := Snapshot{MilestonesFired: []string{"energized"}}
	b := Snapshot{MilestonesFired: []string{"energized"}}

	a.equal(b)
	if a.MilestonesFired == nil || b.MilestonesFired == nil {
		t.Error("equal mutated its value receivers' slices visibly")
	}
}
