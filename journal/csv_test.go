package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCSV(t *testing.T) (*CSV, string, string, string) {
	t.Helper()

	dir := t.TempDir()
	opens := filepath.Join(dir, "opens.csv")
	closes := filepath.Join(dir, "closes.csv")
	decisions := filepath.Join(dir, "decisions.csv")

	j, err := NewCSV(opens, closes, decisions)
	require.NoError(t, err)

	return j, opens, closes, decisions
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	fh, err := os.Open(path)
	require.NoError(t, err)
	defer fh.Close()

	rows, err := csv.NewReader(fh).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVWritesHeaders(t *testing.T) {
	t.Parallel()

	j, opens, closes, decisions := newTestCSV(t)
	require.NoError(t, j.Close())

	assert.Equal(t, "position_id", readCSV(t, opens)[0][0])
	assert.Equal(t, "exit_price", readCSV(t, closes)[0][6])
	assert.Equal(t, "peak_return", readCSV(t, decisions)[0][8])
}

func TestCSVRecordsAppend(t *testing.T) {
	t.Parallel()

	j, opens, closes, decisions := newTestCSV(t)

	entry := time.Date(2025, 3, 10, 21, 0, 0, 0, time.UTC)

	require.NoError(t, j.RecordOpen(OpenRecord{
		PositionID: "POS1",
		Account:    "scalp-book",
		Symbol:     "SOL-USD",
		Intent:     "SCALP",
		Units:      25,
		EntryPrice: 142.5,
		EntryTime:  entry,
	}))
	require.NoError(t, j.RecordClose(testCloseRecord("POS1", entry.Add(48*time.Hour))))
	require.NoError(t, j.RecordDecision(DecisionRecord{
		Day:        entry.AddDate(0, 0, 1),
		PositionID: "POS1",
		Account:    "trend-book",
		Symbol:     "SOL-USD",
		Action:     "HOLD",
		Reason:     "DECELERATION",
		Phase:      "BASE",
		DaysHeld:   1,
		PeakReturn: 0.012,
	}))
	require.NoError(t, j.Close())

	openRows := readCSV(t, opens)
	require.Len(t, openRows, 2)
	assert.Equal(t, "POS1", openRows[1][0])
	assert.Equal(t, "SCALP", openRows[1][3])
	assert.Equal(t, entry.Format(time.RFC3339), openRows[1][6])

	closeRows := readCSV(t, closes)
	require.Len(t, closeRows, 2)
	assert.Equal(t, "TRAILING_STOP", closeRows[1][10])

	decisionRows := readCSV(t, decisions)
	require.Len(t, decisionRows, 2)
	assert.Equal(t, "DECELERATION", decisionRows[1][5])
	assert.Equal(t, "1", decisionRows[1][7])
}
