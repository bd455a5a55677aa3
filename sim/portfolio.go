package sim

import (
	"errors"
	"fmt"
	"time"
)

var ErrTagOpen = errors.New("position already open for strategy")

// Portfolio is the persisted account state.
type Portfolio struct {
	Cash        float64    `json:"cash"`
	Positions   []Position `json:"positions"`
	TotalTrades int        `json:"totalTrades"`
	LastCheck   time.Time  `json:"lastCheck"`
	LastSignal  time.Time  `json:"lastSignalTime"`
	Start       time.Time  `json:"startTime"`
	Halted      bool       `json:"halted"`
}

func NewPortfolio(capital float64, start time.Time) *Portfolio {
	return &Portfolio{
		Cash:      capital,
		Positions: []Position{},
		Start:     start,
	}
}

// Value is cash plus what every open position would return if closed at price.
func (p *Portfolio) Value(price float64) float64 {
	v := p.Cash
	for _, pos := range p.Positions {
		v += Proceeds(pos, price)
	}
	return v
}

// Exposure is the total collateral tied up in open positions.
func (p *Portfolio) Exposure() float64 {
	var sum float64
	for _, pos := range p.Positions {
		sum += pos.Collateral
	}
	return sum
}

// ExposureOf is the collateral held by the positions tagged tag.
func (p *Portfolio) ExposureOf(tag string) float64 {
	var sum float64
	for _, pos := range p.Positions {
		if pos.Strategy == tag {
			sum += pos.Collateral
		}
	}
	return sum
}

func (p *Portfolio) Has(tag string) bool {
	_, ok := p.Position(tag)
	return ok
}

// Position returns the open position for a strategy tag.
func (p *Portfolio) Position(tag string) (Position, bool) {
	for _, pos := range p.Positions {
		if pos.Strategy == tag {
			return pos, true
		}
	}
	return Position{}, false
}

// Add records an opened position and debits its collateral.
// At most one position per strategy tag is allowed.
func (p *Portfolio) Add(pos Position) error {
	if p.Has(pos.Strategy) {
		return fmt.Errorf("%w: %s", ErrTagOpen, pos.Strategy)
	}
	p.Positions = append(p.Positions, pos)
	p.Cash -= pos.Collateral
	return nil
}

// Remove drops the position with the given id. It does not touch cash;
// use Settle for that.
func (p *Portfolio) Remove(id string) (Position, bool) {
	for i, pos := range p.Positions {
		if pos.ID == id {
			p.Positions = append(p.Positions[:i:i], p.Positions[i+1:]...)
			return pos, true
		}
	}
	return Position{}, false
}

// Settle closes the position at exit, credits the proceeds and counts the trade.
func (p *Portfolio) Settle(id string, exit float64) (Close, bool) {
	pos, ok := p.Remove(id)
	if !ok {
		return Close{}, false
	}
	c := ClosePosition(pos, exit)
	p.Cash += c.Proceeds
	p.TotalTrades++
	return c, true
}

// Clone returns a deep copy.
func (p *Portfolio) Clone() *Portfolio {
	cp := *p
	cp.Positions = append([]Position(nil), p.Positions...)
	return &cp
}
