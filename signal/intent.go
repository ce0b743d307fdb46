package signal

import (
	"fmt"
	"strings"
)

// Intent is the holding-horizon category assigned to a signal. It is set
// exactly once, at classification time; nothing downstream may change it.
type Intent int

const (
	Scalp Intent = iota
	Intraday
	Swing
	SqueezeTrend
)

// Intraday and Swing are reserved routing tags: the rule table never emits
// them today, but the enumeration and the routing table stay four-way so a
// future rule can target them without touching either.

func (i Intent) String() string {
	switch i {
	case Scalp:
		return "SCALP"
	case Intraday:
		return "INTRADAY"
	case Swing:
		return "SWING"
	case SqueezeTrend:
		return "SQUEEZE_TREND"
	default:
		return ""
	}
}

func ParseIntent(s string) (Intent, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SCALP":
		return Scalp, nil
	case "INTRADAY":
		return Intraday, nil
	case "SWING":
		return Swing, nil
	case "SQUEEZE_TREND":
		return SqueezeTrend, nil
	default:
		return Scalp, fmt.Errorf("unknown intent %q", s)
	}
}

// Intents lists the full enumeration, for building routing tables.
func Intents() []Intent {
	return []Intent{Scalp, Intraday, Swing, SqueezeTrend}
}
