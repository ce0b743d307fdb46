package book

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rustyeddy/horizon/broker"
	"github.com/rustyeddy/horizon/internal/id"
	"github.com/rustyeddy/horizon/journal"
	"github.com/rustyeddy/horizon/signal"
)

var (
	ErrAccountMismatch    = errors.New("account mismatch")
	ErrAllocationExceeded = errors.New("allocation exceeded")
	ErrInvalidState       = errors.New("invalid position state")
)

// Ledger is the bookkeeping for one account. Every mutation serializes on
// the ledger mutex, and the allocation check shares a critical section with
// the insert, so two concurrent opens can never jointly pass the ceiling.
type Ledger struct {
	mu        sync.Mutex
	acct      Account
	capital   float64
	accepts   map[signal.Intent]bool
	positions map[string]*Position
	journal   journal.Journal
	sink      broker.Sink
}

// OpenRequest is everything the book needs to accept a fill.
type OpenRequest struct {
	Symbol     string
	Intent     signal.Intent
	Units      float64
	EntryPrice float64
	EntryTime  time.Time
}

func (r OpenRequest) validate() error {
	if strings.TrimSpace(r.Symbol) == "" {
		return fmt.Errorf("open position: symbol is required")
	}
	if r.Units <= 0 {
		return fmt.Errorf("open position: units must be positive, got %v", r.Units)
	}
	if r.EntryPrice <= 0 {
		return fmt.Errorf("open position: entry price must be positive, got %v", r.EntryPrice)
	}
	return nil
}

// NewLedger builds the book for one account. totalCapital is the capital
// across all books; the account's fraction of it is this book's ceiling.
// accepts lists the intents that route here. A nil journal or sink gets a
// no-op default.
func NewLedger(acct Account, totalCapital float64, accepts []signal.Intent, j journal.Journal, sink broker.Sink) (*Ledger, error) {
	if strings.TrimSpace(acct.ID) == "" {
		return nil, fmt.Errorf("ledger: account id is required")
	}
	if acct.Fraction <= 0 || acct.Fraction > 1 {
		return nil, fmt.Errorf("ledger: account %q fraction must be in (0,1], got %v", acct.ID, acct.Fraction)
	}
	if totalCapital <= 0 {
		return nil, fmt.Errorf("ledger: total capital must be positive, got %v", totalCapital)
	}
	if len(accepts) == 0 {
		return nil, fmt.Errorf("ledger: account %q accepts no intents", acct.ID)
	}
	if j == nil {
		j = journal.Nop{}
	}
	if sink == nil {
		sink = broker.NopSink{}
	}

	l := &Ledger{
		acct:      acct,
		capital:   totalCapital,
		accepts:   make(map[signal.Intent]bool, len(accepts)),
		positions: make(map[string]*Position),
		journal:   j,
		sink:      sink,
	}
	for _, in := range accepts {
		l.accepts[in] = true
	}
	return l, nil
}

func (l *Ledger) Account() Account {
	return l.acct
}

// Ceiling is the most entry-notional exposure this book may carry.
func (l *Ledger) Ceiling() float64 {
	return l.acct.Fraction * l.capital
}

// Open admits a position. Wrong-book intents fail with ErrAccountMismatch
// and fills that would push exposure past the ceiling fail with
// ErrAllocationExceeded; either way the book is left exactly as it was.
func (l *Ledger) Open(ctx context.Context, req OpenRequest) (*Position, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	p, err := l.openLocked(req)
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}

	l.sink.PositionOpened(ctx, broker.Fill{
		PositionID: p.ID,
		Account:    p.AccountID,
		Symbol:     p.Symbol,
		Intent:     p.Intent.String(),
		Units:      p.Units,
		Price:      p.EntryPrice,
		Time:       p.EntryTime,
	})
	return p, nil
}

func (l *Ledger) openLocked(req OpenRequest) (*Position, error) {
	if !l.accepts[req.Intent] {
		return nil, fmt.Errorf("open position: %w: intent %s does not route to account %q",
			ErrAccountMismatch, req.Intent, l.acct.ID)
	}

	notional := req.Units * req.EntryPrice
	if exposure := l.exposureLocked(); exposure+notional > l.Ceiling() {
		return nil, fmt.Errorf("open position: %w: account %q exposure %.2f + fill %.2f exceeds ceiling %.2f",
			ErrAllocationExceeded, l.acct.ID, exposure, notional, l.Ceiling())
	}

	entryTime := req.EntryTime
	if entryTime.IsZero() {
		entryTime = time.Now().UTC()
	}

	p := &Position{
		ID:         id.New(),
		AccountID:  l.acct.ID,
		Symbol:     req.Symbol,
		Intent:     req.Intent,
		Units:      req.Units,
		EntryPrice: req.EntryPrice,
		EntryTime:  entryTime,
		Open:       true,
	}

	// Journal before insert: a failed write leaves the book unchanged.
	if err := l.journal.RecordOpen(journal.OpenRecord{
		PositionID: p.ID,
		Account:    p.AccountID,
		Symbol:     p.Symbol,
		Intent:     p.Intent.String(),
		Units:      p.Units,
		EntryPrice: p.EntryPrice,
		EntryTime:  p.EntryTime,
	}); err != nil {
		return nil, fmt.Errorf("open position: journal: %w", err)
	}

	l.positions[p.ID] = p
	return p, nil
}

// Close settles an open position at the given exit price. Closing an
// unknown or already-closed position fails with ErrInvalidState.
func (l *Ledger) Close(ctx context.Context, positionID string, exitPrice float64, at time.Time, reason string) (*Position, error) {
	if exitPrice <= 0 {
		return nil, fmt.Errorf("close position: exit price must be positive, got %v", exitPrice)
	}
	if reason == "" {
		reason = "MANUAL"
	}

	l.mu.Lock()
	p, err := l.closeLocked(positionID, exitPrice, at, reason)
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}

	l.sink.PositionClosed(ctx, broker.Closed{
		PositionID: p.ID,
		Account:    p.AccountID,
		Symbol:     p.Symbol,
		Units:      p.Units,
		ExitPrice:  p.ExitPrice,
		Time:       p.ExitTime,
		RealizedPL: p.RealizedPL,
		Reason:     reason,
	})
	return p, nil
}

func (l *Ledger) closeLocked(positionID string, exitPrice float64, at time.Time, reason string) (*Position, error) {
	p, ok := l.positions[positionID]
	if !ok {
		return nil, fmt.Errorf("close position: %w: %q not found in account %q",
			ErrInvalidState, positionID, l.acct.ID)
	}
	if !p.Open {
		return nil, fmt.Errorf("close position: %w: %q already closed",
			ErrInvalidState, positionID)
	}

	if at.IsZero() {
		at = time.Now().UTC()
	}
	pl := (exitPrice - p.EntryPrice) * p.Units

	if err := l.journal.RecordClose(journal.CloseRecord{
		PositionID: p.ID,
		Account:    p.AccountID,
		Symbol:     p.Symbol,
		Intent:     p.Intent.String(),
		Units:      p.Units,
		EntryPrice: p.EntryPrice,
		ExitPrice:  exitPrice,
		EntryTime:  p.EntryTime,
		ExitTime:   at,
		RealizedPL: pl,
		Reason:     reason,
	}); err != nil {
		return nil, fmt.Errorf("close position: journal: %w", err)
	}

	p.ExitPrice = exitPrice
	p.ExitTime = at
	p.RealizedPL = pl
	p.Open = false
	return p, nil
}

// ListOpen returns the open positions, oldest first. ULIDs sort by open
// time, so ordering by ID is ordering by age.
func (l *Ledger) ListOpen() []*Position {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]*Position, 0, len(l.positions))
	for _, p := range l.positions {
		if p.Open {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Exposure is the entry-notional sum across open positions.
func (l *Ledger) Exposure() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.exposureLocked()
}

func (l *Ledger) exposureLocked() float64 {
	var total float64
	for _, p := range l.positions {
		if p.Open {
			total += p.Notional()
		}
	}
	return total
}
