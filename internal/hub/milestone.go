package hub

// Milestone thresholds on the active count.
const (
	EnergizedThreshold    = 100
	SuperchargedThreshold = 360
)

// milestone is one once-per-epoch threshold on the active count.
type milestone struct {
	name      string
	threshold uint64
	fired     bool
}

// milestones tracks threshold crossings in ascending threshold order. An
// epoch ends on explicit reset.
type milestones struct {
	set [2]milestone
}

func newMilestones() *milestones {
	return &milestones{set: [2]milestone{
		{name: "energized", threshold: EnergizedThreshold},
		{name: "supercharged", threshold: SuperchargedThreshold},
	}}
}

// seed marks thresholds already at or past count as fired without reporting
// them. Used at startup so a restart does not replay animations.
func (m *milestones) seed(count uint64) {
	for i := range m.set {
		if count >= m.set[i].threshold {
			m.set[i].fired = true
		}
	}
}

// check reports the names of thresholds newly crossed by count, in ascending
// threshold order, marking each as fired.
func (m *milestones) check(count uint64) []string {
	var fired []string
	for i := range m.set {
		if !m.set[i].fired && count >= m.set[i].threshold {
			m.set[i].fired = true
			fired = append(fired, m.set[i].name)
		}
	}
	return fired
}

// reset clears all fired flags, starting a new epoch.
func (m *milestones) reset() {
	for i := range m.set {
		m.set[i].fired = false
	}
}

// firedNames returns the fired thresholds in ascending threshold order.
func (m *milestones) firedNames() []string {
	names := make([]string, 0, len(m.set))
	for i := range m.set {
		if m.set[i].fired {
			names = append(names, m.set[i].name)
		}
	}
	return names
}
