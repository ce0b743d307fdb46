package trend

// Action is what one evaluation tells the book to do with the position.
type Action int

const (
	Hold Action = iota
	ExitFull
)

func (a Action) String() string {
	switch a {
	case Hold:
		return "HOLD"
	case ExitFull:
		return "EXIT_FULL"
	default:
		return ""
	}
}

// Reason names the step that decided the cycle. Hold reasons and exit
// reasons share the namespace so every reported decision carries one.
type Reason string

const (
	ReasonNone             Reason = "NONE"
	ReasonSqueezeOverride  Reason = "SQUEEZE_OVERRIDE"
	ReasonMomentumReversal Reason = "MOMENTUM_REVERSAL"
	ReasonDeceleration     Reason = "DECELERATION"
	ReasonTimeout          Reason = "TIMEOUT"
	ReasonTrailingStop     Reason = "TRAILING_STOP"
)

// Decision is the outcome of one evaluation of one position. Phase reports
// the position's trailing stage as of this cycle, for holds and exits both.
type Decision struct {
	Action Action
	Reason Reason
	Phase  Phase
}

func hold(r Reason, p Phase) Decision {
	return Decision{Action: Hold, Reason: r, Phase: p}
}

func exitFull(r Reason, p Phase) Decision {
	return Decision{Action: ExitFull, Reason: r, Phase: p}
}
