// Package sim is the position ledger: the single place where positions are
// opened, closed and valued. Backtest and live trading share it.
package sim

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/rustyeddy/papertrader/pkg/id"
)

type Side string

const (
	Long  Side = "LONG"
	Short Side = "SHORT"
)

func (s Side) Valid() bool { return s == Long || s == Short }

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Long {
		return Short
	}
	return Long
}

var (
	ErrInvalidPrice = errors.New("price must be > 0")
	ErrNoCash       = errors.New("no cash available")
	ErrInvalidSide  = errors.New("invalid side")
)

// Position is an open directional bet. It is never mutated after creation;
// closing removes it from the portfolio.
type Position struct {
	ID         string    `json:"id"`
	Side       Side      `json:"side"`
	Entry      float64   `json:"entry"`
	Quantity   float64   `json:"qty"`
	Collateral float64   `json:"collateral"`
	Strategy   string    `json:"strategy"`
	OpenTime   time.Time `json:"openTime"`
}

// OpenPosition sizes a new position from the cash currently available.
// collateral = availableCash * sizeFraction, quantity = collateral / price.
// The returned cost is the cash the caller must debit.
func OpenPosition(side Side, price, availableCash, sizeFraction float64, tag string, now time.Time) (Position, float64, error) {
	if !side.Valid() {
		return Position{}, 0, fmt.Errorf("%w: %q", ErrInvalidSide, side)
	}
	if price <= 0 {
		return Position{}, 0, fmt.Errorf("%w: %v", ErrInvalidPrice, price)
	}
	if availableCash <= 0 {
		return Position{}, 0, fmt.Errorf("%w: %.2f", ErrNoCash, availableCash)
	}

	collateral := availableCash * sizeFraction
	p := Position{
		ID:         id.At(now),
		Side:       side,
		Entry:      price,
		Quantity:   collateral / price,
		Collateral: collateral,
		Strategy:   tag,
		OpenTime:   now,
	}
	return p, collateral, nil
}

// Close is the outcome of closing a position at an exit price.
type Close struct {
	Position   Position
	Exit       float64
	Proceeds   float64 // cash credited back
	PnL        float64 // Proceeds - Collateral
	PnLPercent float64
}

func (c Close) Won() bool { return c.PnL > 0 }

// ClosePosition computes the cash returned by closing p at exit.
func ClosePosition(p Position, exit float64) Close {
	proceeds := Proceeds(p, exit)
	if proceeds < 0 {
		log.Printf("[sim] %s %s closed at %.2f with negative proceeds %.2f", p.Side, p.ID, exit, proceeds)
	}
	return Close{
		Position:   p,
		Exit:       exit,
		Proceeds:   proceeds,
		PnL:        proceeds - p.Collateral,
		PnLPercent: PnLPercent(p.Side, p.Entry, exit),
	}
}

// Proceeds is what closing p at price would return.
//
//	LONG:  qty * price
//	SHORT: collateral + qty * (entry - price)
//
// SHORT proceeds are not floored and go negative past a 100% adverse move.
func Proceeds(p Position, price float64) float64 {
	if p.Side == Short {
		return p.Collateral + p.Quantity*(p.Entry-price)
	}
	return p.Quantity * price
}

// PnLPercent is the signed percentage move in the position's favor.
func PnLPercent(side Side, entry, current float64) float64 {
	if entry == 0 {
		return 0
	}
	if side == Short {
		return (entry - current) / entry * 100
	}
	return (current - entry) / entry * 100
}
