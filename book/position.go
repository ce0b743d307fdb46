package book

import (
	"math"
	"time"

	"github.com/rustyeddy/horizon/signal"
	"github.com/rustyeddy/horizon/trend"
)

// Position is one filled signal in one account. Identity fields are fixed
// at open; Trail is the only part that moves while the position lives, and
// only the exit engine moves it.
type Position struct {
	ID         string
	AccountID  string
	Symbol     string
	Intent     signal.Intent
	Units      float64
	EntryPrice float64
	EntryTime  time.Time

	Trail trend.State

	// Realized on close
	ExitPrice  float64
	ExitTime   time.Time
	RealizedPL float64
	Open       bool
}

// Notional is the capital the position ties up, marked at entry. The
// allocation ceiling is enforced against the sum of these.
func (p *Position) Notional() float64 {
	return math.Abs(p.Units) * p.EntryPrice
}
