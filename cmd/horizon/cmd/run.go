package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/horizon/book"
	"github.com/rustyeddy/horizon/broker"
	"github.com/rustyeddy/horizon/config"
	"github.com/rustyeddy/horizon/feed"
	"github.com/rustyeddy/horizon/internal/util"
	"github.com/rustyeddy/horizon/journal"
	"github.com/rustyeddy/horizon/market"
	"github.com/rustyeddy/horizon/metrics"
	"github.com/rustyeddy/horizon/router"
	"github.com/rustyeddy/horizon/signal"
	"github.com/rustyeddy/horizon/trend"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay a signal history through the capital router",
	Long: `Replay signal and snapshot CSV files through the capital router.

Signals are processed in day order; at the end of each day that has
snapshot rows, every open trend position is evaluated against them and
full exits are applied immediately.

Example:
  horizon run -f examples/config.yaml -s examples/signals.csv -m examples/snapshots.csv`,
	RunE: runRun,
}

var (
	runConfigPath    string
	runSignalsPath   string
	runSnapshotsPath string
	runFrom          string
	runTo            string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.Flags().StringVarP(&runSignalsPath, "signals", "s", "", "path to signal CSV file (required)")
	runCmd.Flags().StringVarP(&runSnapshotsPath, "snapshots", "m", "", "path to end-of-day snapshot CSV file")
	runCmd.Flags().StringVar(&runFrom, "from", "", "replay start date YYYY-MM-DD (inclusive)")
	runCmd.Flags().StringVar(&runTo, "to", "", "replay end date YYYY-MM-DD (exclusive)")
	runCmd.MarkFlagRequired("config")
	runCmd.MarkFlagRequired("signals")
}

// dayGroup collects one trading day's signals and snapshots.
type dayGroup struct {
	date    time.Time
	signals []signal.Signal
	snaps   map[string]market.Snapshot
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := util.NewLogger(cfg.Logging.Level)

	fmt.Printf("Replaying signals with config: %s\n", runConfigPath)
	fmt.Printf("  Capital: $%.2f %s\n", cfg.Capital.Total, cfg.Capital.Currency)
	fmt.Printf("  Accounts: %s (%.0f%%), %s (%.0f%%)\n",
		cfg.Accounts.Scalp.ID, cfg.Accounts.Scalp.Fraction*100,
		cfg.Accounts.Trend.ID, cfg.Accounts.Trend.Fraction*100)
	fmt.Printf("  Per-trade slice: %.1f%%  Hold limit: %d days\n",
		cfg.Sizing.PerTradePct*100, cfg.Exit.MaxHoldDays)
	fmt.Println()

	j, err := buildJournal(cfg)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	if cfg.Metrics.Addr != "" {
		srv := metrics.Serve(cfg.Metrics.Addr)
		defer srv.Close()
		fmt.Printf("Serving metrics on %s/metrics\n\n", cfg.Metrics.Addr)
	}

	sink := broker.LogSink{Log: log}
	scalpBook, err := book.NewLedger(
		book.Account{ID: cfg.Accounts.Scalp.ID, Fraction: cfg.Accounts.Scalp.Fraction},
		cfg.Capital.Total,
		[]signal.Intent{signal.Scalp, signal.Intraday},
		j, sink,
	)
	if err != nil {
		return fmt.Errorf("create scalp book: %w", err)
	}
	trendBook, err := book.NewLedger(
		book.Account{ID: cfg.Accounts.Trend.ID, Fraction: cfg.Accounts.Trend.Fraction},
		cfg.Capital.Total,
		[]signal.Intent{signal.Swing, signal.SqueezeTrend},
		j, sink,
	)
	if err != nil {
		return fmt.Errorf("create trend book: %w", err)
	}

	engine, err := trend.NewEngine(cfg.Exit.Params())
	if err != nil {
		return fmt.Errorf("create exit engine: %w", err)
	}

	rt, err := router.New(router.Config{
		Classifier:  signal.NewClassifier(),
		Engine:      engine,
		ScalpBook:   scalpBook,
		TrendBook:   trendBook,
		PerTradePct: cfg.Sizing.PerTradePct,
		Journal:     j,
		Log:         log,
	})
	if err != nil {
		return fmt.Errorf("create router: %w", err)
	}

	from, err := parseDateFlag(runFrom)
	if err != nil {
		return fmt.Errorf("bad --from: %w", err)
	}
	to, err := parseDateFlag(runTo)
	if err != nil {
		return fmt.Errorf("bad --to: %w", err)
	}

	days, err := loadDays(runSignalsPath, runSnapshotsPath, from, to)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ctx := context.Background()
	var (
		opened, rejected, exits, deferred int
		totalPL                           float64
		rejectReasons                     = map[string]int{}
		exitReasons                       = map[string]int{}
	)

	for _, key := range keys {
		g := days[key]
		var dayOpened, dayRejected, dayExits, dayDeferred int

		for _, sig := range g.signals {
			out := rt.ProcessSignal(ctx, sig)
			if out.Rejected {
				dayRejected++
				rejectReasons[out.Reason]++
				continue
			}
			dayOpened++
		}

		if len(g.snaps) > 0 {
			rt.Snapshots().Reset()
			for _, snap := range g.snaps {
				rt.Snapshots().Set(snap)
			}
			for _, o := range rt.EvaluateTrendPositions(ctx, g.date) {
				switch {
				case o.Deferred:
					dayDeferred++
				case o.Closed != nil:
					dayExits++
					exitReasons[string(o.Decision.Reason)]++
					totalPL += o.Closed.RealizedPL
				}
			}
		}

		fmt.Printf("%s  signals=%-3d opened=%-3d rejected=%-3d exits=%-3d deferred=%d\n",
			key, len(g.signals), dayOpened, dayRejected, dayExits, dayDeferred)

		opened += dayOpened
		rejected += dayRejected
		exits += dayExits
		deferred += dayDeferred
	}

	fmt.Printf("\nFinal Results:\n")
	fmt.Printf("  Opened: %d  Rejected: %d  Exits: %d  Deferred: %d\n",
		opened, rejected, exits, deferred)
	printReasons("Rejections", rejectReasons)
	printReasons("Exits", exitReasons)
	fmt.Printf("  Realized P/L: $%.2f\n", totalPL)
	for _, bk := range []*book.Ledger{scalpBook, trendBook} {
		fmt.Printf("  %s: %d open, $%.2f exposure\n",
			bk.Account().ID, len(bk.ListOpen()), bk.Exposure())
	}
	if cfg.Journal.Type == "csv" {
		fmt.Printf("\nResults saved to:\n  - %s\n  - %s\n  - %s\n",
			cfg.Journal.OpensFile, cfg.Journal.ClosesFile, cfg.Journal.DecisionsFile)
	} else if cfg.Journal.Type == "sqlite" {
		fmt.Printf("\nResults saved to: %s\n", cfg.Journal.DBPath)
	}

	return nil
}

// loadDays reads both feeds fully and groups rows by UTC trading day, so
// late-arriving snapshot days still get an end-of-day sweep after the
// signal history runs out.
func loadDays(signalsPath, snapshotsPath string, from, to time.Time) (map[string]*dayGroup, error) {
	days := map[string]*dayGroup{}

	group := func(t time.Time) *dayGroup {
		key := t.UTC().Format("2006-01-02")
		g, ok := days[key]
		if !ok {
			date := time.Date(t.UTC().Year(), t.UTC().Month(), t.UTC().Day(), 0, 0, 0, 0, time.UTC)
			g = &dayGroup{date: date, snaps: map[string]market.Snapshot{}}
			days[key] = g
		}
		return g
	}

	sf, err := feed.NewSignalFeed(signalsPath, from, to)
	if err != nil {
		return nil, fmt.Errorf("open signals: %w", err)
	}
	defer sf.Close()
	for {
		sig, ok, err := sf.Next()
		if err != nil {
			return nil, fmt.Errorf("read signals: %w", err)
		}
		if !ok {
			break
		}
		g := group(sig.Time)
		g.signals = append(g.signals, sig)
	}

	if snapshotsPath == "" {
		return days, nil
	}

	mf, err := feed.NewSnapshotFeed(snapshotsPath, from, to)
	if err != nil {
		return nil, fmt.Errorf("open snapshots: %w", err)
	}
	defer mf.Close()
	for {
		snap, ok, err := mf.Next()
		if err != nil {
			return nil, fmt.Errorf("read snapshots: %w", err)
		}
		if !ok {
			break
		}
		g := group(snap.Day)
		g.snaps[snap.Symbol] = snap
	}

	return days, nil
}

func buildJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "csv":
		return journal.NewCSV(cfg.Journal.OpensFile, cfg.Journal.ClosesFile, cfg.Journal.DecisionsFile)
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	default:
		return journal.Nop{}, nil
	}
}

func parseDateFlag(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

func printReasons(label string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	reasons := make([]string, 0, len(counts))
	for r := range counts {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	fmt.Printf("  %s:", label)
	for _, r := range reasons {
		fmt.Printf(" %s=%d", r, counts[r])
	}
	fmt.Println()
}
