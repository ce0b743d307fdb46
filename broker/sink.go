package broker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Fill describes an accepted position open, as the execution venue sees it.
type Fill struct {
	PositionID string
	Account    string
	Symbol     string
	Intent     string
	Units      float64
	Price      float64
	Time       time.Time
}

// Closed describes a finished position round trip.
type Closed struct {
	PositionID string
	Account    string
	Symbol     string
	Units      float64
	ExitPrice  float64
	Time       time.Time
	RealizedPL float64
	Reason     string
}

// Sink receives position lifecycle events from a book. Implementations
// forward them to an execution venue or a report stream. Notification
// semantics: the book's state is already settled when a sink runs, and a
// sink must never call back into the ledger that emitted the event.
type Sink interface {
	PositionOpened(ctx context.Context, f Fill)
	PositionClosed(ctx context.Context, c Closed)
}

// NopSink drops everything.
type NopSink struct{}

func (NopSink) PositionOpened(context.Context, Fill)   {}
func (NopSink) PositionClosed(context.Context, Closed) {}

// LogSink writes lifecycle events to a zerolog logger. It stands in for a
// real venue adapter in replay and paper runs.
type LogSink struct {
	Log zerolog.Logger
}

func (s LogSink) PositionOpened(_ context.Context, f Fill) {
	s.Log.Info().
		Str("position", f.PositionID).
		Str("account", f.Account).
		Str("symbol", f.Symbol).
		Str("intent", f.Intent).
		Float64("units", f.Units).
		Float64("price", f.Price).
		Msg("position opened")
}

func (s LogSink) PositionClosed(_ context.Context, c Closed) {
	s.Log.Info().
		Str("position", c.PositionID).
		Str("account", c.Account).
		Str("symbol", c.Symbol).
		Float64("units", c.Units).
		Float64("exit_price", c.ExitPrice).
		Float64("realized_pl", c.RealizedPL).
		Str("reason", c.Reason).
		Msg("position closed")
}
