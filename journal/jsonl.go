package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// record is the on-disk JSONL shape. Money is fixed to 2dp and quantity to
// 6dp so the log reads the same regardless of float noise.
type record struct {
	ID        string           `json:"id"`
	Timestamp time.Time        `json:"timestamp"`
	Action    Action           `json:"action"`
	Strategy  string           `json:"strategy,omitempty"`
	Side      string           `json:"side,omitempty"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Entry     *decimal.Decimal `json:"entry,omitempty"`
	Qty       *decimal.Decimal `json:"qty,omitempty"`
	Size      *decimal.Decimal `json:"size,omitempty"`
	PnL       *decimal.Decimal `json:"pnl,omitempty"`
	Cash      *decimal.Decimal `json:"cash,omitempty"`
	Portfolio *decimal.Decimal `json:"portfolio,omitempty"`
	Adaptive  bool             `json:"adaptive,omitempty"`
	Reason    string           `json:"reason,omitempty"`
}

func fixed(v float64, places int32) *decimal.Decimal {
	d := decimal.NewFromFloat(v).Round(places)
	return &d
}

// optional is fixed for fields an action does not define; zero is omitted.
func optional(v float64, places int32) *decimal.Decimal {
	if v == 0 {
		return nil
	}
	return fixed(v, places)
}

func toFloat(d *decimal.Decimal) float64 {
	if d == nil {
		return 0
	}
	return d.InexactFloat64()
}

// toRecord always writes price, cash and portfolio, plus qty and size for
// opens and entry, qty and pnl for closes, even when they are zero.
func toRecord(e Event) record {
	r := record{
		ID:        e.ID,
		Timestamp: e.Time.UTC(),
		Action:    e.Action,
		Strategy:  e.Strategy,
		Side:      e.Side,
		Price:     fixed(e.Price, 2),
		Entry:     optional(e.Entry, 2),
		Qty:       optional(e.Quantity, 6),
		Size:      optional(e.Size, 2),
		PnL:       optional(e.PnLPercent, 2),
		Cash:      fixed(e.Cash, 2),
		Portfolio: fixed(e.Portfolio, 2),
		Adaptive:  e.Adaptive,
		Reason:    e.Reason,
	}
	switch {
	case e.Action == Open:
		r.Qty = fixed(e.Quantity, 6)
		r.Size = fixed(e.Size, 2)
	case e.Action.IsClose():
		r.Entry = fixed(e.Entry, 2)
		r.Qty = fixed(e.Quantity, 6)
		r.PnL = fixed(e.PnLPercent, 2)
	}
	return r
}

func (r record) event() Event {
	return Event{
		ID:         r.ID,
		Time:       r.Timestamp,
		Action:     r.Action,
		Strategy:   r.Strategy,
		Side:       r.Side,
		Price:      toFloat(r.Price),
		Entry:      toFloat(r.Entry),
		Quantity:   toFloat(r.Qty),
		Size:       toFloat(r.Size),
		PnLPercent: toFloat(r.PnL),
		Cash:       toFloat(r.Cash),
		Portfolio:  toFloat(r.Portfolio),
		Adaptive:   r.Adaptive,
		Reason:     r.Reason,
	}
}

// JSONL appends one JSON object per line.
type JSONL struct {
	mu sync.Mutex
	w  io.Writer
	f  *os.File
}

// NewJSONL opens path for appending, creating it if needed.
func NewJSONL(path string) (*JSONL, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open trade log: %w", err)
	}
	return &JSONL{w: f, f: f}, nil
}

// NewJSONLWriter writes to w; Close does not close w.
func NewJSONLWriter(w io.Writer) *JSONL { return &JSONL{w: w} }

func (j *JSONL) Record(e Event) error {
	b, err := json.Marshal(toRecord(e))
	if err != nil {
		return err
	}
	b = append(b, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()
	_, err = j.w.Write(b)
	return err
}

func (j *JSONL) Close() error {
	if j.f == nil {
		return nil
	}
	return j.f.Close()
}

// ReadJSONL decodes every event in r. Blank lines are skipped.
func ReadJSONL(r io.Reader) ([]Event, error) {
	var out []Event
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var rec record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("trade log line %d: %w", line, err)
		}
		out = append(out, rec.event())
	}
	return out, sc.Err()
}

// ReadJSONLFile is ReadJSONL over a file path.
func ReadJSONLFile(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadJSONL(f)
}
