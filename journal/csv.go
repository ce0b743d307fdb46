package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSV struct {
	opens      *csv.Writer
	closes     *csv.Writer
	decisions  *csv.Writer
	of, cf, df *os.File
}

func NewCSV(opensPath, closesPath, decisionsPath string) (*CSV, error) {
	of, err := os.Create(opensPath)
	if err != nil {
		return nil, err
	}
	cf, err := os.Create(closesPath)
	if err != nil {
		of.Close()
		return nil, err
	}
	df, err := os.Create(decisionsPath)
	if err != nil {
		of.Close()
		cf.Close()
		return nil, err
	}

	j := &CSV{
		opens:     csv.NewWriter(of),
		closes:    csv.NewWriter(cf),
		decisions: csv.NewWriter(df),
		of:        of,
		cf:        cf,
		df:        df,
	}

	headers := []struct {
		w   *csv.Writer
		row []string
	}{
		{j.opens, []string{"position_id", "account", "symbol", "intent", "units", "entry_price", "entry_time"}},
		{j.closes, []string{"position_id", "account", "symbol", "intent", "units", "entry_price", "exit_price", "entry_time", "exit_time", "realized_pl", "reason"}},
		{j.decisions, []string{"day", "position_id", "account", "symbol", "action", "reason", "phase", "days_held", "peak_return"}},
	}
	for _, h := range headers {
		if err := h.w.Write(h.row); err != nil {
			j.Close()
			return nil, err
		}
		h.w.Flush()
		if err := h.w.Error(); err != nil {
			j.Close()
			return nil, err
		}
	}

	return j, nil
}

func (j *CSV) RecordOpen(r OpenRecord) error {
	err := j.opens.Write([]string{
		r.PositionID,
		r.Account,
		r.Symbol,
		r.Intent,
		f(r.Units),
		f(r.EntryPrice),
		r.EntryTime.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	j.opens.Flush()
	return j.opens.Error()
}

func (j *CSV) RecordClose(r CloseRecord) error {
	err := j.closes.Write([]string{
		r.PositionID,
		r.Account,
		r.Symbol,
		r.Intent,
		f(r.Units),
		f(r.EntryPrice),
		f(r.ExitPrice),
		r.EntryTime.Format(time.RFC3339),
		r.ExitTime.Format(time.RFC3339),
		f(r.RealizedPL),
		r.Reason,
	})
	if err != nil {
		return err
	}
	j.closes.Flush()
	return j.closes.Error()
}

func (j *CSV) RecordDecision(r DecisionRecord) error {
	err := j.decisions.Write([]string{
		r.Day.Format(time.RFC3339),
		r.PositionID,
		r.Account,
		r.Symbol,
		r.Action,
		r.Reason,
		r.Phase,
		strconv.Itoa(r.DaysHeld),
		f(r.PeakReturn),
	})
	if err != nil {
		return err
	}
	j.decisions.Flush()
	return j.decisions.Error()
}

func (j *CSV) Close() error {
	var first error

	for _, w := range []*csv.Writer{j.opens, j.closes, j.decisions} {
		w.Flush()
		if err := w.Error(); err != nil && first == nil {
			first = err
		}
	}
	for _, fh := range []*os.File{j.of, j.cf, j.df} {
		if err := fh.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
