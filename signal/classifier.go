package signal

// Rule pairs a guard with the intent it assigns. Guards must be pure.
type Rule struct {
	Name  string
	Guard func(Signal) bool
	Emit  Intent
}

// Classifier resolves an accepted signal to its holding-horizon intent by
// walking an ordered rule table. First matching guard wins; nothing matches
// means the fallback intent. Keeping the precedence in a slice makes it
// inspectable and testable instead of buried in nested conditionals.
type Classifier struct {
	rules    []Rule
	fallback Intent
}

// NewClassifier returns the v1 table. One rule: a squeeze with positive,
// non-fading momentum and either a narrative news backdrop or intact
// higher-timeframe structure reads as the start of a multi-day trend.
// Everything else is a scalp.
func NewClassifier() *Classifier {
	return &Classifier{
		rules: []Rule{
			{
				Name: "squeeze-trend",
				Guard: func(s Signal) bool {
					return s.SqueezeOn &&
						s.Momentum > 0 &&
						s.MomentumSlope >= 0 &&
						(s.News == NewsNarrative || s.Structure == StructureIntact)
				},
				Emit: SqueezeTrend,
			},
		},
		fallback: Scalp,
	}
}

// Rules exposes the table for inspection. Callers must not mutate it.
func (c *Classifier) Rules() []Rule {
	return c.rules
}

// Classify validates and tags a signal. It is total over valid signals:
// every one gets an intent, and invalid input fails closed with ErrInvalid
// rather than defaulting to a guessed horizon.
func (c *Classifier) Classify(sig Signal) (Intent, error) {
	if err := sig.Validate(); err != nil {
		return 0, err
	}
	for _, r := range c.rules {
		if r.Guard(sig) {
			return r.Emit, nil
		}
	}
	return c.fallback, nil
}
