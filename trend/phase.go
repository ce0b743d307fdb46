package trend

// Phase is the trailing-stop stage of a trend position. A position starts
// in PhaseBase with no trail armed; profit arms a loose trail and more
// profit tightens it. Phases only ever advance.
type Phase int

const (
	PhaseBase Phase = iota
	PhaseTrailLoose
	PhaseTrailTight
)

func (p Phase) String() string {
	switch p {
	case PhaseBase:
		return "BASE"
	case PhaseTrailLoose:
		return "TRAIL_LOOSE"
	case PhaseTrailTight:
		return "TRAIL_TIGHT"
	default:
		return ""
	}
}
