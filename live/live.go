// Package live schedules ticks against the wall clock.
package live

import (
	"context"
	"time"

	"github.com/rustyeddy/papertrader/engine"
)

// DefaultInterval is the loop period when none is configured.
const DefaultInterval = 30 * time.Minute

type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time                         { return time.Now().UTC() }
func (SystemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Interval yields the current time immediately, then once every Every.
// With Once set it yields a single time and stops, which is how a cron
// driven deployment runs one tick per process.
type Interval struct {
	Clock Clock
	Every time.Duration
	Once  bool

	started bool
}

var _ engine.Scheduler = (*Interval)(nil)

func NewInterval(every time.Duration, once bool) *Interval {
	if every <= 0 {
		every = DefaultInterval
	}
	return &Interval{Clock: SystemClock{}, Every: every, Once: once}
}

func (s *Interval) Next(ctx context.Context) (time.Time, bool, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, false, err
	}
	clk := s.Clock
	if clk == nil {
		clk = SystemClock{}
	}
	if !s.started {
		s.started = true
		return clk.Now(), true, nil
	}
	if s.Once {
		return time.Time{}, false, nil
	}

	select {
	case <-ctx.Done():
		return time.Time{}, false, ctx.Err()
	case <-clk.After(s.Every):
		return clk.Now(), true, nil
	}
}
