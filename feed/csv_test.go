package feed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rustyeddy/horizon/market"
	"github.com/rustyeddy/horizon/signal"
)

func TestParseSignalRow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		row       []string
		wantOk    bool
		wantErr   bool
		checkFunc func(t *testing.T, s signal.Signal)
	}{
		{
			name:    "valid row",
			row:     []string{"2025-03-01T14:30:00Z", "BTC-USD", "100000", "true", "2.5", "0.4", "narrative", "intact"},
			wantOk:  true,
			wantErr: false,
			checkFunc: func(t *testing.T, s signal.Signal) {
				if s.Symbol != "BTC-USD" {
					t.Errorf("symbol = %v, want BTC-USD", s.Symbol)
				}
				if s.Price != 100000 {
					t.Errorf("price = %v, want 100000", s.Price)
				}
				if !s.SqueezeOn {
					t.Error("squeeze_on = false, want true")
				}
				if s.News != signal.NewsNarrative {
					t.Errorf("news = %v, want narrative", s.News)
				}
				if s.Structure != signal.StructureIntact {
					t.Errorf("structure = %v, want intact", s.Structure)
				}
			},
		},
		{
			name:    "empty enum fields default",
			row:     []string{"2025-03-01T14:30:00Z", "ETH-USD", "2000", "0", "-0.5", "0.1", "", ""},
			wantOk:  true,
			wantErr: false,
			checkFunc: func(t *testing.T, s signal.Signal) {
				if s.News != signal.NewsNone {
					t.Errorf("news = %v, want none", s.News)
				}
				if s.Structure != signal.StructureBroken {
					t.Errorf("structure = %v, want broken", s.Structure)
				}
			},
		},
		{
			name:   "negative price passes through for downstream rejection",
			row:    []string{"2025-03-01T14:30:00Z", "BTC-USD", "-5", "true", "2.5", "0.4", "narrative", "intact"},
			wantOk: true,
			checkFunc: func(t *testing.T, s signal.Signal) {
				if err := s.Validate(); err == nil {
					t.Error("expected downstream validation to reject the row")
				}
			},
		},
		{
			name:   "too few columns",
			row:    []string{"2025-03-01T14:30:00Z", "BTC-USD", "100000"},
			wantOk: false,
		},
		{
			name:   "empty timestamp",
			row:    []string{"", "BTC-USD", "100000", "true", "2.5", "0.4", "narrative", "intact"},
			wantOk: false,
		},
		{
			name:   "empty symbol",
			row:    []string{"2025-03-01T14:30:00Z", "", "100000", "true", "2.5", "0.4", "narrative", "intact"},
			wantOk: false,
		},
		{
			name:    "invalid timestamp",
			row:     []string{"not-a-time", "BTC-USD", "100000", "true", "2.5", "0.4", "narrative", "intact"},
			wantErr: true,
		},
		{
			name:    "invalid price",
			row:     []string{"2025-03-01T14:30:00Z", "BTC-USD", "lots", "true", "2.5", "0.4", "narrative", "intact"},
			wantErr: true,
		},
		{
			name:    "invalid squeeze flag",
			row:     []string{"2025-03-01T14:30:00Z", "BTC-USD", "100000", "maybe", "2.5", "0.4", "narrative", "intact"},
			wantErr: true,
		},
		{
			name:    "unknown news tag",
			row:     []string{"2025-03-01T14:30:00Z", "BTC-USD", "100000", "true", "2.5", "0.4", "vibes", "intact"},
			wantErr: true,
		},
		{
			name:    "unknown structure tag",
			row:     []string{"2025-03-01T14:30:00Z", "BTC-USD", "100000", "true", "2.5", "0.4", "narrative", "wobbly"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, ok, err := parseSignalRow(tt.row)

			if ok != tt.wantOk {
				t.Errorf("ok = %v, want %v", ok, tt.wantOk)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if ok && tt.checkFunc != nil {
				tt.checkFunc(t, s)
			}
		})
	}
}

func TestParseSnapshotRow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		row       []string
		wantOk    bool
		wantErr   bool
		checkFunc func(t *testing.T, s market.Snapshot)
	}{
		{
			name:   "valid date row",
			row:    []string{"2025-03-10", "BTC-USD", "104000", "1.8", "0.2", "false"},
			wantOk: true,
			checkFunc: func(t *testing.T, s market.Snapshot) {
				want := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
				if !s.Day.Equal(want) {
					t.Errorf("day = %v, want %v", s.Day, want)
				}
				if s.Price != 104000 {
					t.Errorf("price = %v, want 104000", s.Price)
				}
			},
		},
		{
			name:   "valid rfc3339 row",
			row:    []string{"2025-03-10T21:00:00Z", "BTC-USD", "104000", "1.8", "0.2", "true"},
			wantOk: true,
			checkFunc: func(t *testing.T, s market.Snapshot) {
				if !s.SqueezeOn {
					t.Error("squeeze_on = false, want true")
				}
			},
		},
		{
			name:   "too few columns",
			row:    []string{"2025-03-10", "BTC-USD"},
			wantOk: false,
		},
		{
			name:    "invalid day",
			row:     []string{"someday", "BTC-USD", "104000", "1.8", "0.2", "false"},
			wantErr: true,
		},
		{
			name:    "invalid momentum",
			row:     []string{"2025-03-10", "BTC-USD", "104000", "fast", "0.2", "false"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, ok, err := parseSnapshotRow(tt.row)

			if ok != tt.wantOk {
				t.Errorf("ok = %v, want %v", ok, tt.wantOk)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if ok && tt.checkFunc != nil {
				tt.checkFunc(t, s)
			}
		})
	}
}

func TestSignalFeedNext(t *testing.T) {
	t.Parallel()

	t.Run("basic iteration with header", func(t *testing.T) {
		t.Parallel()

		csvPath := filepath.Join(t.TempDir(), "signals.csv")
		data := `time,symbol,price,squeeze_on,momentum,momentum_slope,news,structure
2025-03-01T14:30:00Z,BTC-USD,100000,true,2.5,0.4,narrative,intact
2025-03-01T15:00:00Z,ETH-USD,2000,false,-0.5,0.1,,broken
2025-03-02T14:30:00Z,BTC-USD,101000,true,2.6,0.3,narrative,intact
`
		if err := os.WriteFile(csvPath, []byte(data), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}

		f, err := NewSignalFeed(csvPath, time.Time{}, time.Time{})
		if err != nil {
			t.Fatalf("NewSignalFeed: %v", err)
		}
		defer f.Close()

		var sigs []signal.Signal
		for {
			s, ok, err := f.Next()
			if err != nil {
				t.Fatalf("Next() error: %v", err)
			}
			if !ok {
				break
			}
			sigs = append(sigs, s)
		}

		if len(sigs) != 3 {
			t.Fatalf("got %d signals, want 3", len(sigs))
		}
		if sigs[1].Symbol != "ETH-USD" {
			t.Errorf("second symbol = %v, want ETH-USD", sigs[1].Symbol)
		}
	})

	t.Run("range filter", func(t *testing.T) {
		t.Parallel()

		csvPath := filepath.Join(t.TempDir(), "signals.csv")
		data := `2025-03-01T14:30:00Z,BTC-USD,100000,true,2.5,0.4,narrative,intact
2025-03-02T14:30:00Z,BTC-USD,101000,true,2.6,0.3,narrative,intact
2025-03-03T14:30:00Z,BTC-USD,102000,true,2.7,0.2,narrative,intact
`
		if err := os.WriteFile(csvPath, []byte(data), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}

		from := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
		to := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
		f, err := NewSignalFeed(csvPath, from, to)
		if err != nil {
			t.Fatalf("NewSignalFeed: %v", err)
		}
		defer f.Close()

		s, ok, err := f.Next()
		if err != nil || !ok {
			t.Fatalf("Next() = %v, %v, %v", s, ok, err)
		}
		if !s.Time.Equal(time.Date(2025, 3, 2, 14, 30, 0, 0, time.UTC)) {
			t.Errorf("time = %v, want the March 2 row", s.Time)
		}

		_, ok, err = f.Next()
		if err != nil {
			t.Fatalf("Next() error: %v", err)
		}
		if ok {
			t.Error("expected end of filtered feed")
		}
	})

	t.Run("nonexistent file", func(t *testing.T) {
		t.Parallel()

		if _, err := NewSignalFeed("/nonexistent/signals.csv", time.Time{}, time.Time{}); err == nil {
			t.Error("expected error for nonexistent file")
		}
	})
}

func TestSnapshotFeedNext(t *testing.T) {
	t.Parallel()

	csvPath := filepath.Join(t.TempDir(), "snapshots.csv")
	data := `day,symbol,price,momentum,momentum_slope,squeeze_on
2025-03-02,BTC-USD,101000,2.6,0.3,false
2025-03-02,ETH-USD,2100,1.1,0.1,false
2025-03-03,BTC-USD,99000,-1.0,-0.4,false
`
	if err := os.WriteFile(csvPath, []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	f, err := NewSnapshotFeed(csvPath, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("NewSnapshotFeed: %v", err)
	}
	defer f.Close()

	var snaps []market.Snapshot
	for {
		s, ok, err := f.Next()
		if err != nil {
			t.Fatalf("Next() error: %v", err)
		}
		if !ok {
			break
		}
		snaps = append(snaps, s)
	}

	if len(snaps) != 3 {
		t.Fatalf("got %d snapshots, want 3", len(snaps))
	}
	if snaps[2].Momentum != -1.0 {
		t.Errorf("third momentum = %v, want -1.0", snaps[2].Momentum)
	}
}
