package router

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/horizon/book"
	"github.com/rustyeddy/horizon/journal"
	"github.com/rustyeddy/horizon/market"
	"github.com/rustyeddy/horizon/signal"
	"github.com/rustyeddy/horizon/trend"
)

type testJournal struct {
	opens     []journal.OpenRecord
	closes    []journal.CloseRecord
	decisions []journal.DecisionRecord
}

func (j *testJournal) RecordOpen(r journal.OpenRecord) error {
	j.opens = append(j.opens, r)
	return nil
}

func (j *testJournal) RecordClose(r journal.CloseRecord) error {
	j.closes = append(j.closes, r)
	return nil
}

func (j *testJournal) RecordDecision(r journal.DecisionRecord) error {
	j.decisions = append(j.decisions, r)
	return nil
}

func (j *testJournal) Close() error { return nil }

func newTestRouter(t *testing.T) (*Router, *book.Ledger, *book.Ledger, *testJournal) {
	t.Helper()

	j := &testJournal{}
	scalp, err := book.NewLedger(
		book.Account{ID: "scalp-book", Fraction: 0.6}, 100000,
		[]signal.Intent{signal.Scalp, signal.Intraday}, j, nil,
	)
	require.NoError(t, err)
	trendBk, err := book.NewLedger(
		book.Account{ID: "trend-book", Fraction: 0.4}, 100000,
		[]signal.Intent{signal.Swing, signal.SqueezeTrend}, j, nil,
	)
	require.NoError(t, err)

	engine, err := trend.NewEngine(trend.DefaultParams())
	require.NoError(t, err)

	r, err := New(Config{
		Classifier:  signal.NewClassifier(),
		Engine:      engine,
		ScalpBook:   scalp,
		TrendBook:   trendBk,
		PerTradePct: 0.1,
		Journal:     j,
		Log:         zerolog.Nop(),
	})
	require.NoError(t, err)
	return r, scalp, trendBk, j
}

func newSignal(t *testing.T, symbol string, price float64, f signal.Features) signal.Signal {
	t.Helper()

	sig, err := signal.New(symbol, price, time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC), f)
	require.NoError(t, err)
	return sig
}

func squeezeFeatures() signal.Features {
	return signal.Features{
		SqueezeOn:     true,
		Momentum:      2.0,
		MomentumSlope: 0.3,
		News:          signal.NewsNarrative,
		Structure:     signal.StructureIntact,
	}
}

func tradingDay(n int) time.Time {
	return time.Date(2025, 3, n, 21, 0, 0, 0, time.UTC)
}

func daySnap(n int, symbol string, price, momentum, slope float64) market.Snapshot {
	return market.Snapshot{
		Symbol:        symbol,
		Day:           tradingDay(n),
		Price:         price,
		Momentum:      momentum,
		MomentumSlope: slope,
	}
}

func loadSnaps(r *Router, snaps ...market.Snapshot) {
	r.Snapshots().Reset()
	for _, s := range snaps {
		r.Snapshots().Set(s)
	}
}

func TestNewValidates(t *testing.T) {
	t.Parallel()

	_, err := New(Config{})
	assert.Error(t, err)

	r, _, _, _ := newTestRouter(t)
	assert.NotNil(t, r)
}

func TestNarrativeSqueezeRoutesToTrendBook(t *testing.T) {
	t.Parallel()

	r, scalp, trendBk, _ := newTestRouter(t)

	// Squeeze with positive, non-fading momentum and a narrative tag
	// qualifies even with broken higher-timeframe structure.
	f := squeezeFeatures()
	f.Structure = signal.StructureBroken
	out := r.ProcessSignal(context.Background(), newSignal(t, "BTC-USD", 100000, f))

	require.False(t, out.Rejected)
	assert.Equal(t, signal.SqueezeTrend, out.Intent)
	assert.Equal(t, "trend-book", out.Account)
	require.NotNil(t, out.Position)
	// 10% of the 40k trend allocation at 100k a unit.
	assert.InDelta(t, 0.04, out.Position.Units, 1e-9)
	assert.Len(t, trendBk.ListOpen(), 1)
	assert.Empty(t, scalp.ListOpen())
}

func TestNonQualifyingSignalFallsBackToScalp(t *testing.T) {
	t.Parallel()

	r, scalp, trendBk, _ := newTestRouter(t)

	f := squeezeFeatures()
	f.SqueezeOn = false
	out := r.ProcessSignal(context.Background(), newSignal(t, "ETH-USD", 2000, f))

	require.False(t, out.Rejected)
	assert.Equal(t, signal.Scalp, out.Intent)
	assert.Equal(t, "scalp-book", out.Account)
	assert.Len(t, scalp.ListOpen(), 1)
	assert.Empty(t, trendBk.ListOpen())
}

func TestMalformedSignalRejectsClosed(t *testing.T) {
	t.Parallel()

	r, scalp, trendBk, j := newTestRouter(t)

	// Hand-built signal skips validation until classification.
	out := r.ProcessSignal(context.Background(), signal.Signal{Symbol: "BTC-USD"})

	require.True(t, out.Rejected)
	assert.Equal(t, ReasonInvalidSignal, out.Reason)
	assert.ErrorIs(t, out.Err, signal.ErrInvalid)
	assert.Nil(t, out.Position)
	assert.Empty(t, scalp.ListOpen())
	assert.Empty(t, trendBk.ListOpen())
	assert.Empty(t, j.opens)
}

func TestAllocationCeilingRejection(t *testing.T) {
	t.Parallel()

	r, _, trendBk, _ := newTestRouter(t)
	ctx := context.Background()

	// 10 fills of 4k exactly fill the 40k trend allocation.
	for i := 0; i < 10; i++ {
		out := r.ProcessSignal(ctx, newSignal(t, "BTC-USD", 100000, squeezeFeatures()))
		require.False(t, out.Rejected, "fill %d", i)
	}

	out := r.ProcessSignal(ctx, newSignal(t, "BTC-USD", 100000, squeezeFeatures()))
	require.True(t, out.Rejected)
	assert.Equal(t, ReasonAllocationExceeded, out.Reason)
	assert.ErrorIs(t, out.Err, book.ErrAllocationExceeded)
	assert.Len(t, trendBk.ListOpen(), 10)
	assert.InDelta(t, 40000, trendBk.Exposure(), 1e-9)
}

func TestMisconfiguredBookSurfacesAccountMismatch(t *testing.T) {
	t.Parallel()

	scalp, err := book.NewLedger(
		book.Account{ID: "scalp-book", Fraction: 0.6}, 100000,
		[]signal.Intent{signal.Scalp}, nil, nil,
	)
	require.NoError(t, err)
	// Trend book that refuses squeeze-trend fills.
	trendBk, err := book.NewLedger(
		book.Account{ID: "trend-book", Fraction: 0.4}, 100000,
		[]signal.Intent{signal.Swing}, nil, nil,
	)
	require.NoError(t, err)
	engine, err := trend.NewEngine(trend.DefaultParams())
	require.NoError(t, err)
	r, err := New(Config{
		Classifier:  signal.NewClassifier(),
		Engine:      engine,
		ScalpBook:   scalp,
		TrendBook:   trendBk,
		PerTradePct: 0.1,
		Log:         zerolog.Nop(),
	})
	require.NoError(t, err)

	out := r.ProcessSignal(context.Background(), newSignal(t, "BTC-USD", 100000, squeezeFeatures()))
	require.True(t, out.Rejected)
	assert.Equal(t, ReasonAccountMismatch, out.Reason)
	assert.ErrorIs(t, out.Err, book.ErrAccountMismatch)
}

func TestIntentFixedAtOpen(t *testing.T) {
	t.Parallel()

	r, _, trendBk, j := newTestRouter(t)
	ctx := context.Background()

	out := r.ProcessSignal(ctx, newSignal(t, "BTC-USD", 100000, squeezeFeatures()))
	require.False(t, out.Rejected)

	// Day two no longer looks like a squeeze trend; the position stays
	// in the trend book and simply holds.
	loadSnaps(r, daySnap(2, "BTC-USD", 101000, 1.5, 0.2))
	outs := r.EvaluateTrendPositions(ctx, tradingDay(2))
	require.Len(t, outs, 1)
	assert.Equal(t, trend.Hold, outs[0].Decision.Action)
	require.Len(t, trendBk.ListOpen(), 1)
	assert.Equal(t, signal.SqueezeTrend, trendBk.ListOpen()[0].Intent)

	// Reversal closes it out of the same book, intent unchanged.
	loadSnaps(r, daySnap(3, "BTC-USD", 99000, -1.0, -0.4))
	outs = r.EvaluateTrendPositions(ctx, tradingDay(3))
	require.Len(t, outs, 1)
	require.NotNil(t, outs[0].Closed)
	assert.Equal(t, signal.SqueezeTrend, outs[0].Closed.Intent)
	require.Len(t, j.closes, 1)
	assert.Equal(t, "SQUEEZE_TREND", j.closes[0].Intent)
}

func TestTrailTightensThenStopsOutAtSnapshotPrice(t *testing.T) {
	t.Parallel()

	r, _, _, j := newTestRouter(t)
	ctx := context.Background()

	out := r.ProcessSignal(ctx, newSignal(t, "BTC-USD", 100000, squeezeFeatures()))
	require.False(t, out.Rejected)

	run := func(n int, price, momentum float64) ExitOutcome {
		loadSnaps(r, daySnap(n, "BTC-USD", price, momentum, 0.1))
		outs := r.EvaluateTrendPositions(ctx, tradingDay(n))
		require.Len(t, outs, 1)
		return outs[0]
	}

	day2 := run(2, 104000, 1.0)
	assert.Equal(t, trend.Hold, day2.Decision.Action)
	assert.Equal(t, trend.PhaseTrailLoose, day2.Decision.Phase)

	day3 := run(3, 108000, 1.1)
	assert.Equal(t, trend.Hold, day3.Decision.Action)
	assert.Equal(t, trend.PhaseTrailTight, day3.Decision.Phase)

	// 2% giveback from the 8% peak breaches the tight trail; the close
	// settles at the snapshot price, same cycle.
	day4 := run(4, 106000, 1.2)
	assert.Equal(t, trend.ExitFull, day4.Decision.Action)
	assert.Equal(t, trend.ReasonTrailingStop, day4.Decision.Reason)
	require.NotNil(t, day4.Closed)
	assert.InDelta(t, 106000, day4.Closed.ExitPrice, 1e-9)
	assert.InDelta(t, 240, day4.Closed.RealizedPL, 1e-9) // 0.04 * 6000

	require.Len(t, j.closes, 1)
	assert.Equal(t, "TRAILING_STOP", j.closes[0].Reason)
}

func TestTimeoutClosesAfterTwentyHeldDays(t *testing.T) {
	t.Parallel()

	r, _, trendBk, j := newTestRouter(t)
	ctx := context.Background()

	out := r.ProcessSignal(ctx, newSignal(t, "BTC-USD", 100, squeezeFeatures()))
	require.False(t, out.Rejected)

	// Momentum keeps building so nothing else fires first; day 21 is
	// the first day past the hold limit.
	for n := 2; n <= 22; n++ {
		loadSnaps(r, daySnap(n, "BTC-USD", 100.5, 1.0+0.1*float64(n), 0.2))
		outs := r.EvaluateTrendPositions(ctx, tradingDay(n))
		require.Len(t, outs, 1)

		if n < 22 {
			require.Equal(t, trend.Hold, outs[0].Decision.Action, "day %d", n)
			continue
		}
		require.Equal(t, trend.ExitFull, outs[0].Decision.Action)
		assert.Equal(t, trend.ReasonTimeout, outs[0].Decision.Reason)
		require.NotNil(t, outs[0].Closed)
		assert.Equal(t, 21, outs[0].Closed.Trail.DaysHeld)
	}

	assert.Empty(t, trendBk.ListOpen())
	require.Len(t, j.closes, 1)
	assert.Equal(t, "TIMEOUT", j.closes[0].Reason)
	assert.Len(t, j.decisions, 21)
}

func TestBatchIsolatesMissingSnapshot(t *testing.T) {
	t.Parallel()

	r, _, trendBk, j := newTestRouter(t)
	ctx := context.Background()

	symbols := []string{"AAA-USD", "BBB-USD", "CCC-USD", "DDD-USD", "EEE-USD"}
	for _, sym := range symbols {
		out := r.ProcessSignal(ctx, newSignal(t, sym, 100, squeezeFeatures()))
		require.False(t, out.Rejected)
	}

	// Reversal data for everyone except the third symbol.
	r.Snapshots().Reset()
	for _, sym := range symbols {
		if sym == "CCC-USD" {
			continue
		}
		r.Snapshots().Set(daySnap(2, sym, 90, -1.2, -0.5))
	}

	outs := r.EvaluateTrendPositions(ctx, tradingDay(2))
	require.Len(t, outs, 5)

	for i, o := range outs {
		if symbols[i] == "CCC-USD" {
			assert.True(t, o.Deferred)
			assert.ErrorIs(t, o.Err, market.ErrStaleData)
			assert.Nil(t, o.Closed)
			continue
		}
		assert.False(t, o.Deferred, "symbol %s", symbols[i])
		assert.Equal(t, trend.ReasonMomentumReversal, o.Decision.Reason)
		require.NotNil(t, o.Closed, "symbol %s", symbols[i])
		assert.InDelta(t, -400, o.Closed.RealizedPL, 1e-9) // 40 units, 10 down
	}

	// Only the deferred position survives, untouched.
	open := trendBk.ListOpen()
	require.Len(t, open, 1)
	assert.Equal(t, "CCC-USD", open[0].Symbol)
	assert.Equal(t, 0, open[0].Trail.DaysHeld)

	assert.Len(t, j.closes, 4)
	var stale int
	for _, d := range j.decisions {
		if d.Reason == ReasonStaleMarketData {
			stale++
			assert.Equal(t, "HOLD", d.Action)
		}
	}
	assert.Equal(t, 1, stale)
}

func TestInvalidSnapshotDefersWithoutCountingTheDay(t *testing.T) {
	t.Parallel()

	r, _, trendBk, _ := newTestRouter(t)
	ctx := context.Background()

	out := r.ProcessSignal(ctx, newSignal(t, "BTC-USD", 100, squeezeFeatures()))
	require.False(t, out.Rejected)

	// A snapshot that fails validation defers the same way a missing
	// one does.
	loadSnaps(r, daySnap(2, "BTC-USD", -1, 1.0, 0.1))
	outs := r.EvaluateTrendPositions(ctx, tradingDay(2))
	require.Len(t, outs, 1)
	assert.True(t, outs[0].Deferred)
	assert.ErrorIs(t, outs[0].Err, market.ErrStaleData)
	require.Len(t, trendBk.ListOpen(), 1)
	assert.Equal(t, 0, trendBk.ListOpen()[0].Trail.DaysHeld)

	// The next clean day evaluates as the first held day.
	loadSnaps(r, daySnap(3, "BTC-USD", 90, -1.0, -0.4))
	outs = r.EvaluateTrendPositions(ctx, tradingDay(3))
	require.Len(t, outs, 1)
	require.NotNil(t, outs[0].Closed)
	assert.Equal(t, 1, outs[0].Closed.Trail.DaysHeld)
}

func TestLeftoverSnapshotFromEarlierDayDefers(t *testing.T) {
	t.Parallel()

	r, _, trendBk, _ := newTestRouter(t)
	ctx := context.Background()

	out := r.ProcessSignal(ctx, newSignal(t, "BTC-USD", 100, squeezeFeatures()))
	require.False(t, out.Rejected)

	// The store still holds Tuesday's snapshot when Wednesday's sweep
	// runs; that is stale data, not a reversal trigger.
	loadSnaps(r, daySnap(2, "BTC-USD", 90, -1.0, -0.4))
	outs := r.EvaluateTrendPositions(ctx, tradingDay(3))
	require.Len(t, outs, 1)
	assert.True(t, outs[0].Deferred)
	assert.ErrorIs(t, outs[0].Err, market.ErrStaleData)
	assert.Len(t, trendBk.ListOpen(), 1)
}

func TestReprocessingNeverReclassifiesOpenPositions(t *testing.T) {
	t.Parallel()

	r, scalp, trendBk, _ := newTestRouter(t)
	ctx := context.Background()

	out := r.ProcessSignal(ctx, newSignal(t, "BTC-USD", 100000, squeezeFeatures()))
	require.False(t, out.Rejected)

	// A later scalp-grade signal on the same symbol opens a separate
	// scalp position; it never touches the open trend position.
	f := squeezeFeatures()
	f.Momentum = -0.5
	out = r.ProcessSignal(ctx, newSignal(t, "BTC-USD", 100000, f))
	require.False(t, out.Rejected)
	assert.Equal(t, signal.Scalp, out.Intent)

	require.Len(t, trendBk.ListOpen(), 1)
	assert.Equal(t, signal.SqueezeTrend, trendBk.ListOpen()[0].Intent)
	require.Len(t, scalp.ListOpen(), 1)
	assert.Equal(t, signal.Scalp, scalp.ListOpen()[0].Intent)
}
