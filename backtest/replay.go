// Package backtest replays a historical series through the trading engine.
package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/papertrader/engine"
	"github.com/rustyeddy/papertrader/market"
)

// DefaultWarmup is the first bar index that gets a tick. Earlier bars only
// feed the indicators.
const DefaultWarmup = 20

// Replay walks a series one bar at a time. It is both the scheduler and the
// price source for the engine: each Next advances the cursor and Bars returns
// the history up to it.
type Replay struct {
	bars   market.Series
	warmup int
	cur    int
	next   int
}

var (
	_ engine.Scheduler   = (*Replay)(nil)
	_ engine.PriceSource = (*Replay)(nil)
)

func NewReplay(bars market.Series, warmup int) (*Replay, error) {
	if err := bars.Validate(); err != nil {
		return nil, err
	}
	if warmup < 0 {
		warmup = 0
	}
	if warmup >= len(bars) {
		return nil, fmt.Errorf("backtest: %d bars is not enough for warmup %d", len(bars), warmup)
	}
	return &Replay{bars: bars, warmup: warmup, cur: warmup - 1, next: warmup}, nil
}

func (r *Replay) Next(ctx context.Context) (time.Time, bool, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, false, err
	}
	if r.next >= len(r.bars) {
		return time.Time{}, false, nil
	}
	r.cur = r.next
	r.next++
	return r.bars[r.cur].Time, true, nil
}

func (r *Replay) Bars(ctx context.Context) (market.Series, error) {
	if r.cur < 0 {
		return nil, market.ErrEmptySeries
	}
	return r.bars.Upto(r.cur), nil
}

// First is the time of the first replayed bar.
func (r *Replay) First() time.Time { return r.bars[r.warmup].Time }

func (r *Replay) Last() time.Time { return r.bars[len(r.bars)-1].Time }

// Len is the number of ticks the replay will yield.
func (r *Replay) Len() int { return len(r.bars) - r.warmup }
