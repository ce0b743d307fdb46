package market

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrStaleData marks a snapshot that cannot back an exit evaluation. The
// position in question holds and is re-evaluated next cycle; missing data
// never forces an exit.
var ErrStaleData = errors.New("stale market data")

// Snapshot is one end-of-day observation for a symbol, produced by the
// upstream feature pipeline.
type Snapshot struct {
	Symbol        string
	Day           time.Time
	Price         float64
	Momentum      float64
	MomentumSlope float64
	SqueezeOn     bool
}

// Validate reports whether the snapshot is usable. Anything off wraps
// ErrStaleData so callers can treat every unusable form the same way.
func (s Snapshot) Validate() error {
	if strings.TrimSpace(s.Symbol) == "" {
		return fmt.Errorf("%w: snapshot has no symbol", ErrStaleData)
	}
	if s.Price <= 0 || math.IsNaN(s.Price) || math.IsInf(s.Price, 0) {
		return fmt.Errorf("%w: %s price %v", ErrStaleData, s.Symbol, s.Price)
	}
	if math.IsNaN(s.Momentum) || math.IsInf(s.Momentum, 0) {
		return fmt.Errorf("%w: %s momentum %v", ErrStaleData, s.Symbol, s.Momentum)
	}
	if math.IsNaN(s.MomentumSlope) || math.IsInf(s.MomentumSlope, 0) {
		return fmt.Errorf("%w: %s momentum slope %v", ErrStaleData, s.Symbol, s.MomentumSlope)
	}
	return nil
}
