// Package market holds the price data model shared by every execution mode.
package market

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEmptySeries = errors.New("empty price series")
)

// Bar is a single closed price observation.
type Bar struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`
}

// Series is an ascending, time-ordered sequence of bars.
type Series []Bar

// Closes returns the closing prices in series order.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Last returns the most recent bar.
func (s Series) Last() (Bar, bool) {
	if len(s) == 0 {
		return Bar{}, false
	}
	return s[len(s)-1], true
}

// Upto returns the prefix of the series ending at index i (inclusive).
func (s Series) Upto(i int) Series {
	if i < 0 {
		return nil
	}
	if i >= len(s) {
		return s
	}
	return s[:i+1]
}

// Validate checks the series is non-empty, strictly ascending in time and
// carries positive closes.
func (s Series) Validate() error {
	if len(s) == 0 {
		return ErrEmptySeries
	}
	for i, b := range s {
		if b.Close <= 0 {
			return fmt.Errorf("bar %d: non-positive close %v", i, b.Close)
		}
		if i > 0 && !b.Time.After(s[i-1].Time) {
			return fmt.Errorf("bar %d: time %s not after %s", i,
				b.Time.Format(time.RFC3339), s[i-1].Time.Format(time.RFC3339))
		}
	}
	return nil
}

// FromCloses builds a series with a fixed step starting at start. Handy for
// tests and synthetic price paths.
func FromCloses(start time.Time, step time.Duration, closes ...float64) Series {
	out := make(Series, len(closes))
	for i, c := range closes {
		out[i] = Bar{Time: start.Add(time.Duration(i) * step), Close: c}
	}
	return out
}
