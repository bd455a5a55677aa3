// Package strategies turns an indicator frame into trade signals.
package strategies

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rustyeddy/papertrader/indicators"
)

// Input is everything a classifier may look at for one tick. Index is the
// bar being classified; bars after it must not be read.
type Input struct {
	Frame      indicators.Frame
	Index      int
	Now        time.Time
	LastSignal time.Time
	Start      time.Time
}

// Classifier maps the latest bar to zero or more decisions, one per tag.
type Classifier interface {
	Name() string
	Tags() []string
	Params() indicators.Params
	Evaluate(in Input) []Decision
}

// Tuning overrides classifier defaults. Zero fields keep the default.
type Tuning struct {
	Fast       int     `json:"fast,omitempty" yaml:"fast,omitempty"`
	Slow       int     `json:"slow,omitempty" yaml:"slow,omitempty"`
	RSI        int     `json:"rsi,omitempty" yaml:"rsi,omitempty"`
	MinBars    int     `json:"min_bars,omitempty" yaml:"min_bars,omitempty"`
	Overbought float64 `json:"overbought,omitempty" yaml:"overbought,omitempty"`
	Oversold   float64 `json:"oversold,omitempty" yaml:"oversold,omitempty"`

	AdaptWindow time.Duration `json:"adapt_window,omitempty" yaml:"adapt_window,omitempty"`
}

type factory func(Tuning) Classifier

var registry = map[string]factory{
	"aggressive": func(t Tuning) Classifier {
		s := Aggressive()
		s.apply(t)
		return s
	},
	"conservative": func(t Tuning) Classifier {
		s := Conservative()
		s.apply(t)
		return s
	},
	"dual": func(t Tuning) Classifier {
		d := NewDual()
		d.apply(t)
		return d
	},
}

// Names lists the registered classifiers.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ByName builds a classifier with its defaults, then applies t.
func ByName(name string, t Tuning) (Classifier, error) {
	f, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (supported: %s)", name, strings.Join(Names(), ", "))
	}
	c := f(t)
	if err := c.Params().Validate(); err != nil {
		return nil, fmt.Errorf("strategy %s: %w", name, err)
	}
	return c, nil
}

func (t Tuning) params(p indicators.Params) indicators.Params {
	if t.Fast > 0 {
		p.Fast = t.Fast
	}
	if t.Slow > 0 {
		p.Slow = t.Slow
	}
	if t.RSI > 0 {
		p.RSI = t.RSI
	}
	return p
}

func crossUp(f indicators.Frame, i int) bool {
	return i > 0 && f.Fast[i-1] <= f.Slow[i-1] && f.Fast[i] > f.Slow[i]
}

func crossDown(f indicators.Frame, i int) bool {
	return i > 0 && f.Fast[i-1] >= f.Slow[i-1] && f.Fast[i] < f.Slow[i]
}

func inRange(f indicators.Frame, i int) bool {
	return i >= 0 && i < f.Len()
}
