package hub

// counterKind names the counter a ball event increments.
type counterKind int

const (
	countActive counterKind = iota
	countAuto
	countInactive
)

// categorize maps one accepted ball event to a counter. Rules in order:
// an auto period counts auto (and active), a known-inactive hub counts
// inactive, everything else counts active. adhoc has no period or activity
// signal and always counts active.
func categorize(mode Mode, period string, hubActive, hubActiveKnown bool) counterKind {
	if mode == ModeAdhoc {
		return countActive
	}
	if period == "auto" {
		return countAuto
	}
	if hubActiveKnown && !hubActive {
		return countInactive
	}
	return countActive
}
