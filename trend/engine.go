package trend

import (
	"fmt"

	"github.com/rustyeddy/horizon/market"
)

// State is the per-position memory the engine carries between daily
// evaluations. The zero value is the state of a freshly opened position.
type State struct {
	Phase        Phase
	DaysHeld     int
	PeakReturn   float64
	PrevMomentum float64
	MomentumSeen bool
}

// advance moves the phase forward only; a trail never loosens.
func (st *State) advance(p Phase) {
	if p > st.Phase {
		st.Phase = p
	}
}

// Params bound the engine's thresholds. Returns are fractional: 0.04 arms
// the loose trail at +4%.
type Params struct {
	ArmPct           float64
	TightenPct       float64
	GivebackLoosePct float64
	GivebackTightPct float64
	MaxHoldDays      int
}

// DefaultParams is the calibrated baseline.
func DefaultParams() Params {
	return Params{
		ArmPct:           0.04,
		TightenPct:       0.08,
		GivebackLoosePct: 0.04,
		GivebackTightPct: 0.015,
		MaxHoldDays:      20,
	}
}

func (p Params) Validate() error {
	if p.ArmPct <= 0 {
		return fmt.Errorf("arm_pct must be positive")
	}
	if p.TightenPct <= p.ArmPct {
		return fmt.Errorf("tighten_pct must be greater than arm_pct")
	}
	if p.GivebackLoosePct <= 0 || p.GivebackTightPct <= 0 {
		return fmt.Errorf("giveback tolerances must be positive")
	}
	if p.GivebackTightPct >= p.GivebackLoosePct {
		return fmt.Errorf("giveback_tight_pct must be narrower than giveback_loose_pct")
	}
	if p.MaxHoldDays <= 0 {
		return fmt.Errorf("max_hold_days must be positive")
	}
	return nil
}

// evalCtx carries one evaluation's working values through the chain.
type evalCtx struct {
	st   *State
	snap market.Snapshot
	r    float64 // unrealized return at today's price
}

// step is one link in the evaluation chain. It may advance trail state and
// reports whether it decided the cycle. Steps run in declaration order and
// the first decided step wins; earlier steps are protective overrides that
// short-circuit everything after them.
type step struct {
	name Reason
	run  func(*evalCtx) (Decision, bool)
}

// Engine evaluates open trend positions once per trading day. It holds no
// per-position state of its own; everything it remembers lives in the
// State embedded in each position.
type Engine struct {
	params Params
	chain  []step
}

func NewEngine(params Params) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("engine params: %w", err)
	}

	e := &Engine{params: params}
	e.chain = []step{
		{ReasonSqueezeOverride, e.squeezeOverride},
		{ReasonMomentumReversal, e.momentumReversal},
		{ReasonDeceleration, e.deceleration},
		{ReasonTimeout, e.timeout},
		{ReasonTrailingStop, e.trailing},
		{ReasonNone, e.defaultHold},
	}
	return e, nil
}

// Chain exposes the step order for inspection.
func (e *Engine) Chain() []Reason {
	names := make([]Reason, len(e.chain))
	for i, s := range e.chain {
		names[i] = s.name
	}
	return names
}

// Evaluate runs one trading day's exit pass over a single position. Call it
// at most once per position per day: every successful call counts one held
// day and refreshes the momentum memory. A snapshot that fails validation
// returns market.ErrStaleData with the state untouched, so a deferred day
// is not a held day.
func (e *Engine) Evaluate(entryPrice float64, st *State, snap market.Snapshot) (Decision, error) {
	if st == nil {
		return Decision{}, fmt.Errorf("evaluate: nil state")
	}
	if entryPrice <= 0 {
		return Decision{}, fmt.Errorf("evaluate: entry price %v", entryPrice)
	}
	if err := snap.Validate(); err != nil {
		return Decision{}, err
	}

	st.DaysHeld++

	c := &evalCtx{st: st, snap: snap}
	c.r = (snap.Price - entryPrice) / entryPrice

	var out Decision
	for _, s := range e.chain {
		if d, ok := s.run(c); ok {
			out = d
			break
		}
	}

	// Feed tomorrow's deceleration guard no matter which step decided today.
	st.PrevMomentum = snap.Momentum
	st.MomentumSeen = true

	return out, nil
}

// An active squeeze invalidates momentum-based exit logic outright, so it
// holds through anything below it, a reversal included.
func (e *Engine) squeezeOverride(c *evalCtx) (Decision, bool) {
	if !c.snap.SqueezeOn {
		return Decision{}, false
	}
	return hold(ReasonSqueezeOverride, c.st.Phase), true
}

func (e *Engine) momentumReversal(c *evalCtx) (Decision, bool) {
	if c.snap.Momentum < 0 && c.snap.MomentumSlope < 0 {
		return exitFull(ReasonMomentumReversal, c.st.Phase), true
	}
	return Decision{}, false
}

// Deceleration alone never exits: momentum that is positive but fading
// holds, and the hold is decisive. Only a sign flip with a falling slope
// exits, and that is the reversal step's job.
func (e *Engine) deceleration(c *evalCtx) (Decision, bool) {
	if !c.st.MomentumSeen {
		return Decision{}, false
	}
	if c.snap.Momentum > 0 && c.snap.Momentum < c.st.PrevMomentum {
		return hold(ReasonDeceleration, c.st.Phase), true
	}
	return Decision{}, false
}

func (e *Engine) timeout(c *evalCtx) (Decision, bool) {
	if c.st.DaysHeld > e.params.MaxHoldDays {
		return exitFull(ReasonTimeout, c.st.Phase), true
	}
	return Decision{}, false
}

// trailing ratchets the peak, arms or tightens the trail, then checks for a
// breach of the active phase's giveback tolerance against the peak.
func (e *Engine) trailing(c *evalCtx) (Decision, bool) {
	st := c.st
	if c.r > st.PeakReturn {
		st.PeakReturn = c.r
	}

	switch {
	case c.r >= e.params.TightenPct:
		st.advance(PhaseTrailTight)
	case c.r >= e.params.ArmPct:
		st.advance(PhaseTrailLoose)
	}

	if st.Phase == PhaseBase {
		return Decision{}, false
	}
	if st.PeakReturn-c.r >= e.giveback(st.Phase) {
		return exitFull(ReasonTrailingStop, st.Phase), true
	}
	return Decision{}, false
}

func (e *Engine) defaultHold(c *evalCtx) (Decision, bool) {
	return hold(ReasonNone, c.st.Phase), true
}

func (e *Engine) giveback(p Phase) float64 {
	if p == PhaseTrailTight {
		return e.params.GivebackTightPct
	}
	return e.params.GivebackLoosePct
}
