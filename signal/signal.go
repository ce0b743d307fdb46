package signal

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var ErrInvalid = errors.New("invalid signal")

// NewsPersistence grades how durable the news context behind a signal is.
type NewsPersistence int

const (
	NewsNone NewsPersistence = iota
	NewsOther
	NewsNarrative
)

func (n NewsPersistence) String() string {
	switch n {
	case NewsNone:
		return "none"
	case NewsOther:
		return "other"
	case NewsNarrative:
		return "narrative"
	default:
		return ""
	}
}

func ParseNewsPersistence(s string) (NewsPersistence, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return NewsNone, nil
	case "other":
		return NewsOther, nil
	case "narrative":
		return NewsNarrative, nil
	default:
		return NewsNone, fmt.Errorf("unknown news persistence %q", s)
	}
}

// Structure reports whether higher-timeframe structure is still intact.
type Structure int

const (
	StructureBroken Structure = iota
	StructureIntact
)

func (s Structure) String() string {
	switch s {
	case StructureBroken:
		return "broken"
	case StructureIntact:
		return "intact"
	default:
		return ""
	}
}

func ParseStructure(s string) (Structure, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "broken", "":
		return StructureBroken, nil
	case "intact":
		return StructureIntact, nil
	default:
		return StructureBroken, fmt.Errorf("unknown htf structure %q", s)
	}
}

// Features is the upstream pipeline's view of the market at signal time.
type Features struct {
	SqueezeOn     bool
	Momentum      float64
	MomentumSlope float64
	News          NewsPersistence
	Structure     Structure
}

// Signal is one accepted event from the upstream pipeline. Fields are fixed
// at construction; downstream code never mutates a signal.
type Signal struct {
	Symbol string
	Price  float64
	Time   time.Time
	Features
}

// New builds a validated signal. Rejecting malformed input here keeps every
// later stage working on known-good records.
func New(symbol string, price float64, at time.Time, f Features) (Signal, error) {
	sig := Signal{
		Symbol:   symbol,
		Price:    price,
		Time:     at,
		Features: f,
	}
	if err := sig.Validate(); err != nil {
		return Signal{}, err
	}
	return sig, nil
}

// Validate checks every field against its declared domain. Callers on trust
// boundaries re-run this on signals they did not construct themselves.
func (s Signal) Validate() error {
	if strings.TrimSpace(s.Symbol) == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalid)
	}
	if s.Price <= 0 || math.IsNaN(s.Price) || math.IsInf(s.Price, 0) {
		return fmt.Errorf("%w: %s price must be positive, got %v", ErrInvalid, s.Symbol, s.Price)
	}
	if s.Time.IsZero() {
		return fmt.Errorf("%w: %s has no event time", ErrInvalid, s.Symbol)
	}
	if math.IsNaN(s.Momentum) || math.IsInf(s.Momentum, 0) {
		return fmt.Errorf("%w: %s momentum %v", ErrInvalid, s.Symbol, s.Momentum)
	}
	if math.IsNaN(s.MomentumSlope) || math.IsInf(s.MomentumSlope, 0) {
		return fmt.Errorf("%w: %s momentum slope %v", ErrInvalid, s.Symbol, s.MomentumSlope)
	}
	if s.News < NewsNone || s.News > NewsNarrative {
		return fmt.Errorf("%w: %s news persistence out of range (%d)", ErrInvalid, s.Symbol, int(s.News))
	}
	if s.Structure < StructureBroken || s.Structure > StructureIntact {
		return fmt.Errorf("%w: %s htf structure out of range (%d)", ErrInvalid, s.Symbol, int(s.Structure))
	}
	return nil
}
