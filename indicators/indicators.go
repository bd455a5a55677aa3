// Package indicators provides technical analysis indicators for trading
package indicators

import (
	"math"

	"github.com/rustyeddy/papertrader/market"
)

// Indicator computes a single streaming value from bars.
// It is deterministic and safe to use in live, replay, and backtests.
type Indicator interface {
	// Name returns a stable identifier like "EMA(20)" or "RSI(14)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next *closed* bar and updates internal state.
	Update(b market.Bar)

	// Ready reports whether Value() is defined.
	Ready() bool

	// Value returns the current value, or NaN while !Ready().
	Value() float64
}

// Undefined is the sentinel stored for indices where an indicator has no
// value yet. It is NaN so it can never be mistaken for a real reading.
func Undefined() float64 { return math.NaN() }

// Defined reports whether v holds a real indicator value.
func Defined(v float64) bool { return !math.IsNaN(v) }
