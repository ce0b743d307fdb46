// Package feed reads signal and market snapshot CSV files for replay.
package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/horizon/market"
	"github.com/rustyeddy/horizon/signal"
)

// SignalFeed reads canonical signal CSV rows:
//
//	time,symbol,price,squeeze_on,momentum,momentum_slope,news,structure
//
// where time is RFC3339 or RFC3339Nano.
//
// It optionally filters rows to [From, To) if provided.
// Header row ("time,...") is allowed.
// Empty/short rows are skipped.
//
// Rows come back unvalidated; semantic checks happen downstream so a
// bad row is rejected and reported instead of killing the replay.
type SignalFeed struct {
	f    *os.File
	r    *csv.Reader
	from time.Time
	to   time.Time

	sawFirst bool
}

func NewSignalFeed(path string, from, to time.Time) (*SignalFeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	return &SignalFeed{f: f, r: r, from: from, to: to}, nil
}

func (f *SignalFeed) Close() error {
	if f.f != nil {
		return f.f.Close()
	}
	return nil
}

func (f *SignalFeed) Next() (signal.Signal, bool, error) {
	for {
		row, err := f.r.Read()
		if err == io.EOF {
			return signal.Signal{}, false, nil
		}
		if err != nil {
			return signal.Signal{}, false, err
		}
		if len(row) == 0 {
			continue
		}

		// Allow a single header row
		if !f.sawFirst {
			f.sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "time") {
				continue
			}
		}

		sig, ok, err := parseSignalRow(row)
		if err != nil {
			return signal.Signal{}, false, err
		}
		if !ok {
			continue
		}
		if !inRange(sig.Time, f.from, f.to) {
			continue
		}
		return sig, true, nil
	}
}

func parseSignalRow(row []string) (signal.Signal, bool, error) {
	// Need: time,symbol,price,squeeze_on,momentum,momentum_slope,news,structure
	if len(row) < 8 {
		return signal.Signal{}, false, nil
	}

	ts := strings.TrimSpace(row[0])
	if ts == "" {
		return signal.Signal{}, false, nil
	}
	t, err := parseTime(ts)
	if err != nil {
		return signal.Signal{}, false, err
	}

	symbol := strings.TrimSpace(row[1])
	if symbol == "" {
		return signal.Signal{}, false, nil
	}

	price, err := parseFloat(row[2], "price")
	if err != nil {
		return signal.Signal{}, false, err
	}
	squeeze, err := parseBool(row[3], "squeeze_on")
	if err != nil {
		return signal.Signal{}, false, err
	}
	momentum, err := parseFloat(row[4], "momentum")
	if err != nil {
		return signal.Signal{}, false, err
	}
	slope, err := parseFloat(row[5], "momentum_slope")
	if err != nil {
		return signal.Signal{}, false, err
	}
	news, err := signal.ParseNewsPersistence(strings.TrimSpace(row[6]))
	if err != nil {
		return signal.Signal{}, false, err
	}
	structure, err := signal.ParseStructure(strings.TrimSpace(row[7]))
	if err != nil {
		return signal.Signal{}, false, err
	}

	return signal.Signal{
		Symbol: symbol,
		Price:  price,
		Time:   t,
		Features: signal.Features{
			SqueezeOn:     squeeze,
			Momentum:      momentum,
			MomentumSlope: slope,
			News:          news,
			Structure:     structure,
		},
	}, true, nil
}

// SnapshotFeed reads end-of-day market snapshot CSV rows:
//
//	day,symbol,price,momentum,momentum_slope,squeeze_on
//
// where day is a date ("2006-01-02") or an RFC3339 timestamp.
// Header row ("day,...") is allowed; empty/short rows are skipped.
type SnapshotFeed struct {
	f    *os.File
	r    *csv.Reader
	from time.Time
	to   time.Time

	sawFirst bool
}

func NewSnapshotFeed(path string, from, to time.Time) (*SnapshotFeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	return &SnapshotFeed{f: f, r: r, from: from, to: to}, nil
}

func (f *SnapshotFeed) Close() error {
	if f.f != nil {
		return f.f.Close()
	}
	return nil
}

func (f *SnapshotFeed) Next() (market.Snapshot, bool, error) {
	for {
		row, err := f.r.Read()
		if err == io.EOF {
			return market.Snapshot{}, false, nil
		}
		if err != nil {
			return market.Snapshot{}, false, err
		}
		if len(row) == 0 {
			continue
		}

		if !f.sawFirst {
			f.sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "day") {
				continue
			}
		}

		snap, ok, err := parseSnapshotRow(row)
		if err != nil {
			return market.Snapshot{}, false, err
		}
		if !ok {
			continue
		}
		if !inRange(snap.Day, f.from, f.to) {
			continue
		}
		return snap, true, nil
	}
}

func parseSnapshotRow(row []string) (market.Snapshot, bool, error) {
	// Need: day,symbol,price,momentum,momentum_slope,squeeze_on
	if len(row) < 6 {
		return market.Snapshot{}, false, nil
	}

	ds := strings.TrimSpace(row[0])
	if ds == "" {
		return market.Snapshot{}, false, nil
	}
	day, err := parseDay(ds)
	if err != nil {
		return market.Snapshot{}, false, err
	}

	symbol := strings.TrimSpace(row[1])
	if symbol == "" {
		return market.Snapshot{}, false, nil
	}

	price, err := parseFloat(row[2], "price")
	if err != nil {
		return market.Snapshot{}, false, err
	}
	momentum, err := parseFloat(row[3], "momentum")
	if err != nil {
		return market.Snapshot{}, false, err
	}
	slope, err := parseFloat(row[4], "momentum_slope")
	if err != nil {
		return market.Snapshot{}, false, err
	}
	squeeze, err := parseBool(row[5], "squeeze_on")
	if err != nil {
		return market.Snapshot{}, false, err
	}

	return market.Snapshot{
		Symbol:        symbol,
		Day:           day,
		Price:         price,
		Momentum:      momentum,
		MomentumSlope: slope,
		SqueezeOn:     squeeze,
	}, true, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t2, err2 := time.Parse(time.RFC3339Nano, s)
		if err2 != nil {
			return time.Time{}, fmt.Errorf("bad time %q: %w", s, err)
		}
		t = t2
	}
	return t, nil
}

func parseDay(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := parseTime(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad day %q", s)
	}
	return t, nil
}

func parseFloat(s, field string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s %q: %w", field, s, err)
	}
	return v, nil
}

func parseBool(s, field string) (bool, error) {
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("bad %s %q: %w", field, s, err)
	}
	return v, nil
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}
