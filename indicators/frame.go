package indicators

import (
	"fmt"
	"time"

	"github.com/rustyeddy/papertrader/market"
)

// Params selects the indicator periods a classifier needs.
type Params struct {
	Fast             int `json:"fast" yaml:"fast"`
	Slow             int `json:"slow" yaml:"slow"`
	RSI              int `json:"rsi" yaml:"rsi"`
	MomentumLookback int `json:"momentum_lookback" yaml:"momentum_lookback"`
}

func (p Params) Validate() error {
	if p.Fast <= 0 || p.Slow <= 0 {
		return fmt.Errorf("ema periods must be > 0 (fast=%d slow=%d)", p.Fast, p.Slow)
	}
	if p.Fast >= p.Slow {
		return fmt.Errorf("fast period %d must be less than slow period %d", p.Fast, p.Slow)
	}
	if p.RSI <= 0 {
		return fmt.Errorf("rsi period must be > 0, got %d", p.RSI)
	}
	if p.MomentumLookback < 0 {
		return fmt.Errorf("momentum lookback must be >= 0, got %d", p.MomentumLookback)
	}
	return nil
}

// Frame holds every indicator series for one price series, aligned by index.
type Frame struct {
	Params Params
	Bars   market.Series
	Fast   []float64
	Slow   []float64
	RSI    []float64
}

// Compute builds the indicator frame for bars. The result is a pure
// function of its inputs.
func Compute(bars market.Series, p Params) (Frame, error) {
	if err := p.Validate(); err != nil {
		return Frame{}, err
	}
	closes := bars.Closes()
	return Frame{
		Params: p,
		Bars:   bars,
		Fast:   EMA(closes, p.Fast),
		Slow:   EMA(closes, p.Slow),
		RSI:    RSI(closes, p.RSI),
	}, nil
}

func (f Frame) Len() int { return len(f.Bars) }

// Last returns the index of the most recent bar, or -1 for an empty frame.
func (f Frame) Last() int { return len(f.Bars) - 1 }

// Snapshot is the indicator reading at a single bar.
type Snapshot struct {
	Index       int
	Time        time.Time
	Close       float64
	Fast        float64
	Slow        float64
	RSI         float64
	MomentumPct float64
}

// At returns the reading at index i. It panics if i is out of range.
func (f Frame) At(i int) Snapshot {
	b := f.Bars[i]
	s := Snapshot{
		Index: i,
		Time:  b.Time,
		Close: b.Close,
		Fast:  f.Fast[i],
		Slow:  f.Slow[i],
		RSI:   f.RSI[i],
	}
	if f.Params.MomentumLookback > 0 {
		j := i - f.Params.MomentumLookback
		if j < 0 {
			j = 0
		}
		ref := f.Bars[j].Close
		s.MomentumPct = (b.Close - ref) / ref * 100
	}
	return s
}

func (s Snapshot) RSIDefined() bool { return Defined(s.RSI) }

// SpreadPct is the fast/slow EMA gap as a percentage of the slow EMA.
func (s Snapshot) SpreadPct() float64 {
	if s.Slow == 0 {
		return 0
	}
	return (s.Fast - s.Slow) / s.Slow * 100
}

// TrendUp reports whether the fast EMA is above the slow EMA.
func (s Snapshot) TrendUp() bool { return s.Fast > s.Slow }
