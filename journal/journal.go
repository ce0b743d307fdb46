package journal

import "time"

// OpenRecord captures a position at fill time.
type OpenRecord struct {
	PositionID string
	Account    string
	Symbol     string
	Intent     string
	Units      float64
	EntryPrice float64
	EntryTime  time.Time
}

// CloseRecord captures the full round trip of a closed position.
type CloseRecord struct {
	PositionID string
	Account    string
	Symbol     string
	Intent     string
	Units      float64
	EntryPrice float64
	ExitPrice  float64
	EntryTime  time.Time
	ExitTime   time.Time
	RealizedPL float64
	Reason     string
}

// DecisionRecord captures one end-of-day evaluation outcome, holds and
// deferrals included, so the daily cycle leaves a complete audit trail.
type DecisionRecord struct {
	Day        time.Time
	PositionID string
	Account    string
	Symbol     string
	Action     string
	Reason     string
	Phase      string
	DaysHeld   int
	PeakReturn float64
}

type Journal interface {
	RecordOpen(OpenRecord) error
	RecordClose(CloseRecord) error
	RecordDecision(DecisionRecord) error
	Close() error
}

// Nop discards everything. It is the default wherever no journal is
// configured, so callers never nil-check.
type Nop struct{}

func (Nop) RecordOpen(OpenRecord) error         { return nil }
func (Nop) RecordClose(CloseRecord) error       { return nil }
func (Nop) RecordDecision(DecisionRecord) error { return nil }
func (Nop) Close() error                        { return nil }
