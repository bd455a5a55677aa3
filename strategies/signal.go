package strategies

import "github.com/rustyeddy/papertrader/sim"

// Signal is a classifier verdict for one bar.
type Signal string

const (
	Buy            Signal = "BUY"
	Short          Signal = "SHORT"
	BuyOversold    Signal = "BUY_OVERSOLD"
	SellOverbought Signal = "SELL_OVERBOUGHT"
	Hold           Signal = "HOLD"
)

// Side maps an actionable signal to the position side it opens.
// HOLD and unknown signals report false.
func (s Signal) Side() (sim.Side, bool) {
	switch s {
	case Buy, BuyOversold:
		return sim.Long, true
	case Short, SellOverbought:
		return sim.Short, true
	}
	return "", false
}

// Reverses reports whether s points against an open position on side.
func (s Signal) Reverses(side sim.Side) bool {
	sd, ok := s.Side()
	return ok && sd != side
}

func (s Signal) Actionable() bool {
	_, ok := s.Side()
	return ok
}

// Decision is one strategy tag's verdict for a tick.
type Decision struct {
	Tag      string `json:"strategy"`
	Signal   Signal `json:"signal"`
	Adaptive bool   `json:"adaptive,omitempty"`
}
