package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"sync"
	"time"
)

var csvHeader = []string{
	"id", "time", "action", "strategy", "side", "price", "entry", "qty",
	"size", "pnl_pct", "cash", "portfolio", "adaptive", "reason",
}

type CSV struct {
	mu sync.Mutex
	w  *csv.Writer
	f  *os.File
}

// NewCSV creates path and writes the header row.
func NewCSV(path string) (*CSV, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, err
	}
	return &CSV{w: w, f: f}, nil
}

func (j *CSV) Record(e Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	err := j.w.Write([]string{
		e.ID,
		e.Time.UTC().Format(time.RFC3339),
		string(e.Action),
		e.Strategy,
		e.Side,
		f(e.Price),
		f(e.Entry),
		f(e.Quantity),
		f(e.Size),
		f(e.PnLPercent),
		f(e.Cash),
		f(e.Portfolio),
		strconv.FormatBool(e.Adaptive),
		e.Reason,
	})
	if err != nil {
		return err
	}
	j.w.Flush()
	return j.w.Error()
}

func (j *CSV) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.w.Flush()
	if err := j.w.Error(); err != nil {
		return err
	}
	return j.f.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
