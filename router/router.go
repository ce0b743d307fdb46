// Package router wires the intent classifier, the capital books and the
// trend exit engine into a signal-to-position pipeline.
package router

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/horizon/book"
	"github.com/rustyeddy/horizon/journal"
	"github.com/rustyeddy/horizon/market"
	"github.com/rustyeddy/horizon/metrics"
	"github.com/rustyeddy/horizon/risk"
	"github.com/rustyeddy/horizon/signal"
	"github.com/rustyeddy/horizon/trend"
)

// Reason codes attached to rejected signals and deferred evaluations.
const (
	ReasonInvalidSignal      = "INVALID_SIGNAL"
	ReasonAccountMismatch    = "ACCOUNT_MISMATCH"
	ReasonAllocationExceeded = "ALLOCATION_EXCEEDED"
	ReasonInvalidState       = "INVALID_STATE"
	ReasonStaleMarketData    = "STALE_MARKET_DATA"
	ReasonInternal           = "INTERNAL"
)

func reasonFor(err error) string {
	switch {
	case errors.Is(err, signal.ErrInvalid):
		return ReasonInvalidSignal
	case errors.Is(err, book.ErrAccountMismatch):
		return ReasonAccountMismatch
	case errors.Is(err, book.ErrAllocationExceeded):
		return ReasonAllocationExceeded
	case errors.Is(err, book.ErrInvalidState):
		return ReasonInvalidState
	case errors.Is(err, market.ErrStaleData):
		return ReasonStaleMarketData
	default:
		return ReasonInternal
	}
}

// Config carries the collaborators a Router needs. Journal may be nil.
type Config struct {
	Classifier  *signal.Classifier
	Engine      *trend.Engine
	ScalpBook   *book.Ledger
	TrendBook   *book.Ledger
	PerTradePct float64
	Journal     journal.Journal
	Log         zerolog.Logger
}

// Router routes classified signals into per-intent capital books and
// runs the daily exit evaluation over the trend book.
type Router struct {
	classifier  *signal.Classifier
	engine      *trend.Engine
	books       map[signal.Intent]*book.Ledger
	trendBook   *book.Ledger
	snaps       *market.SnapshotStore
	perTradePct float64
	journal     journal.Journal
	log         zerolog.Logger
}

func New(cfg Config) (*Router, error) {
	if cfg.Classifier == nil {
		return nil, errors.New("new router: classifier is required")
	}
	if cfg.Engine == nil {
		return nil, errors.New("new router: exit engine is required")
	}
	if cfg.ScalpBook == nil || cfg.TrendBook == nil {
		return nil, errors.New("new router: both account books are required")
	}
	if cfg.PerTradePct <= 0 || cfg.PerTradePct > 1 {
		return nil, fmt.Errorf("new router: per-trade pct %v out of (0, 1]", cfg.PerTradePct)
	}

	j := cfg.Journal
	if j == nil {
		j = journal.Nop{}
	}

	return &Router{
		classifier: cfg.Classifier,
		engine:     cfg.Engine,
		// Reserved intents route to the nearest-horizon book so the
		// table stays total over the enum.
		books: map[signal.Intent]*book.Ledger{
			signal.Scalp:        cfg.ScalpBook,
			signal.Intraday:     cfg.ScalpBook,
			signal.Swing:        cfg.TrendBook,
			signal.SqueezeTrend: cfg.TrendBook,
		},
		trendBook:   cfg.TrendBook,
		snaps:       market.NewSnapshotStore(),
		perTradePct: cfg.PerTradePct,
		journal:     j,
		log:         cfg.Log,
	}, nil
}

// Snapshots is the store the daily evaluation reads from. Callers load
// the day's snapshots into it before calling EvaluateTrendPositions.
func (r *Router) Snapshots() *market.SnapshotStore {
	return r.snaps
}

// Outcome reports what happened to one processed signal. Intent and
// Account are set once classification and routing succeed; a rejected
// signal carries the reason code and the underlying error instead of a
// Position.
type Outcome struct {
	Intent   signal.Intent
	Account  string
	Position *book.Position
	Rejected bool
	Reason   string
	Err      error
}

// ProcessSignal classifies sig, sizes a fill against the routed
// account's allocation and opens the position. Every failure comes back
// as a rejection Outcome; nothing here is fatal to the caller's loop.
func (r *Router) ProcessSignal(ctx context.Context, sig signal.Signal) Outcome {
	intent, err := r.classifier.Classify(sig)
	if err != nil {
		return r.reject(intent, "", err)
	}

	bk := r.books[intent]
	acct := bk.Account().ID

	size := risk.Calculate(risk.Inputs{
		Budget:      bk.Ceiling(),
		PerTradePct: r.perTradePct,
		Price:       sig.Price,
	})
	if size.Units <= 0 {
		err := fmt.Errorf("size fill: %w: no positive size for %q at %.2f",
			signal.ErrInvalid, sig.Symbol, sig.Price)
		return r.reject(intent, acct, err)
	}

	pos, err := bk.Open(ctx, book.OpenRequest{
		Symbol:     sig.Symbol,
		Intent:     intent,
		Units:      size.Units,
		EntryPrice: sig.Price,
		EntryTime:  sig.Time,
	})
	if err != nil {
		return r.reject(intent, acct, err)
	}

	metrics.SignalsTotal.WithLabelValues(intent.String()).Inc()
	r.publishBook(bk)
	r.log.Info().
		Str("position", pos.ID).
		Str("account", acct).
		Str("symbol", pos.Symbol).
		Str("intent", intent.String()).
		Float64("units", pos.Units).
		Float64("price", pos.EntryPrice).
		Msg("position opened")

	return Outcome{Intent: intent, Account: acct, Position: pos}
}

func (r *Router) reject(intent signal.Intent, account string, err error) Outcome {
	reason := reasonFor(err)
	metrics.RejectionsTotal.WithLabelValues(reason).Inc()
	r.log.Warn().Err(err).Str("reason", reason).Msg("signal rejected")
	return Outcome{
		Intent:   intent,
		Account:  account,
		Rejected: true,
		Reason:   reason,
		Err:      err,
	}
}

// ExitOutcome reports one position's end-of-day evaluation. Closed is
// set when the decision was applied as a full exit; Deferred marks an
// evaluation skipped on stale market data, with Err saying why.
type ExitOutcome struct {
	PositionID string
	Symbol     string
	Decision   trend.Decision
	Closed     *book.Position
	Deferred   bool
	Err        error
}

// EvaluateTrendPositions runs the exit engine once over every open
// position in the trend book against the snapshots currently loaded for
// day, applying full exits immediately. Snapshots missing, malformed or
// dated to another day defer that position; one position failing never
// stops the sweep. It is meant to run once per trading day, after
// signal processing.
func (r *Router) EvaluateTrendPositions(ctx context.Context, day time.Time) []ExitOutcome {
	open := r.trendBook.ListOpen()
	outcomes := make([]ExitOutcome, 0, len(open))
	for _, pos := range open {
		outcomes = append(outcomes, r.evaluateOne(ctx, day, pos))
	}
	r.publishBook(r.trendBook)
	return outcomes
}

func (r *Router) evaluateOne(ctx context.Context, day time.Time, pos *book.Position) ExitOutcome {
	out := ExitOutcome{PositionID: pos.ID, Symbol: pos.Symbol}

	snap, err := r.snaps.Get(pos.Symbol)
	if err != nil {
		return r.deferOne(day, pos, out, fmt.Errorf("evaluate %q: %w", pos.ID, err))
	}
	if !sameDay(snap.Day, day) {
		err := fmt.Errorf("evaluate %q: %w: snapshot for %q dated %s, want %s",
			pos.ID, market.ErrStaleData, pos.Symbol,
			snap.Day.UTC().Format("2006-01-02"), day.UTC().Format("2006-01-02"))
		return r.deferOne(day, pos, out, err)
	}

	dec, err := r.engine.Evaluate(pos.EntryPrice, &pos.Trail, snap)
	if err != nil {
		if errors.Is(err, market.ErrStaleData) {
			return r.deferOne(day, pos, out, err)
		}
		out.Err = err
		r.log.Error().Err(err).Str("position", pos.ID).Msg("exit evaluation failed")
		return out
	}
	out.Decision = dec
	r.recordDecision(day, pos, dec.Action.String(), string(dec.Reason))

	if dec.Action != trend.ExitFull {
		return out
	}

	closed, err := r.trendBook.Close(ctx, pos.ID, snap.Price, snap.Day, string(dec.Reason))
	if err != nil {
		out.Err = err
		r.log.Error().Err(err).Str("position", pos.ID).Msg("exit close failed")
		return out
	}
	out.Closed = closed

	metrics.ExitsTotal.WithLabelValues(string(dec.Reason)).Inc()
	r.log.Info().
		Str("position", closed.ID).
		Str("symbol", closed.Symbol).
		Str("reason", string(dec.Reason)).
		Int("days_held", closed.Trail.DaysHeld).
		Float64("pl", closed.RealizedPL).
		Msg("position closed")
	return out
}

// deferOne records a stale-data day as a held, deferred decision. The
// position's trail state is left exactly as it was.
func (r *Router) deferOne(day time.Time, pos *book.Position, out ExitOutcome, err error) ExitOutcome {
	out.Decision = trend.Decision{
		Action: trend.Hold,
		Reason: trend.ReasonNone,
		Phase:  pos.Trail.Phase,
	}
	out.Deferred = true
	out.Err = err

	metrics.DeferralsTotal.Inc()
	r.recordDecision(day, pos, trend.Hold.String(), ReasonStaleMarketData)
	r.log.Warn().Err(err).Str("position", pos.ID).Msg("exit evaluation deferred")
	return out
}

func (r *Router) recordDecision(day time.Time, pos *book.Position, action, reason string) {
	rec := journal.DecisionRecord{
		Day:        day,
		PositionID: pos.ID,
		Account:    pos.AccountID,
		Symbol:     pos.Symbol,
		Action:     action,
		Reason:     reason,
		Phase:      pos.Trail.Phase.String(),
		DaysHeld:   pos.Trail.DaysHeld,
		PeakReturn: pos.Trail.PeakReturn,
	}
	if err := r.journal.RecordDecision(rec); err != nil {
		r.log.Error().Err(err).Str("position", pos.ID).Msg("journal decision")
	}
}

func (r *Router) publishBook(bk *book.Ledger) {
	id := bk.Account().ID
	metrics.OpenPositions.WithLabelValues(id).Set(float64(len(bk.ListOpen())))
	metrics.AccountExposure.WithLabelValues(id).Set(bk.Exposure())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
