package indicators

import (
	"fmt"

	"github.com/rustyeddy/papertrader/market"
)

// ExponentialMA is a streaming Exponential Moving Average indicator
type ExponentialMA struct {
	period     int
	multiplier float64
	ema        float64
	count      int
}

// NewEMA creates a new Exponential Moving Average indicator with the given period
func NewEMA(period int) *ExponentialMA {
	if period <= 0 {
		panic("EMA period must be > 0")
	}
	return &ExponentialMA{
		period:     period,
		multiplier: 2.0 / float64(period+1),
	}
}

func (e *ExponentialMA) Name() string {
	return fmt.Sprintf("EMA(%d)", e.period)
}

// Warmup is 1: the EMA is seeded by the first close.
func (e *ExponentialMA) Warmup() int {
	return 1
}

func (e *ExponentialMA) Reset() {
	e.ema = 0
	e.count = 0
}

func (e *ExponentialMA) Update(b market.Bar) {
	e.count++
	if e.count == 1 {
		e.ema = b.Close
		return
	}
	e.ema = b.Close*e.multiplier + e.ema*(1-e.multiplier)
}

func (e *ExponentialMA) Ready() bool {
	return e.count > 0
}

func (e *ExponentialMA) Value() float64 {
	if !e.Ready() {
		return Undefined()
	}
	return e.ema
}

// WilderRSI is the streaming form of RSI. Update is O(1) per bar.
type WilderRSI struct {
	period    int
	count     int
	prevClose float64
	avgGain   float64
	avgLoss   float64
	current   float64
}

func NewRSI(period int) *WilderRSI {
	if period <= 0 {
		panic("RSI period must be > 0")
	}
	return &WilderRSI{period: period}
}

func (r *WilderRSI) Name() string { return fmt.Sprintf("RSI(%d)", r.period) }

// Warmup is period+1: period deltas need period+1 closes.
func (r *WilderRSI) Warmup() int { return r.period + 1 }

func (r *WilderRSI) Reset() {
	*r = WilderRSI{period: r.period}
}

func (r *WilderRSI) Update(b market.Bar) {
	r.count++
	if r.count == 1 {
		r.prevClose = b.Close
		return
	}

	gain, loss := split(b.Close - r.prevClose)
	r.prevClose = b.Close
	p := float64(r.period)

	if r.count <= r.period+1 {
		// accumulation: plain sums, averaged once the seed window is full
		r.avgGain += gain
		r.avgLoss += loss
		if r.count == r.period+1 {
			r.avgGain /= p
			r.avgLoss /= p
			r.current = rsiValue(r.avgGain, r.avgLoss)
		}
		return
	}

	r.avgGain = (r.avgGain*(p-1) + gain) / p
	r.avgLoss = (r.avgLoss*(p-1) + loss) / p
	r.current = rsiValue(r.avgGain, r.avgLoss)
}

func (r *WilderRSI) Ready() bool { return r.count > r.period }

func (r *WilderRSI) Value() float64 {
	if !r.Ready() {
		return Undefined()
	}
	return r.current
}
