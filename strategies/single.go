package strategies

import "github.com/rustyeddy/papertrader/indicators"

// MainTag is the tag used by single-signal classifiers.
const MainTag = "MAIN"

// Rules configure a single-signal classifier. The first rule that matches wins:
// crossover, RSI extremes, momentum, EMA spread, then HOLD.
type Rules struct {
	Params  indicators.Params `json:"params" yaml:"params"`
	MinBars int               `json:"min_bars" yaml:"min_bars"`

	// CrossFilter suppresses a bull cross when RSI >= CrossOverbought and a
	// bear cross when RSI <= CrossOversold.
	CrossFilter     bool    `json:"cross_filter" yaml:"cross_filter"`
	CrossOverbought float64 `json:"cross_overbought" yaml:"cross_overbought"`
	CrossOversold   float64 `json:"cross_oversold" yaml:"cross_oversold"`

	Overbought float64 `json:"overbought" yaml:"overbought"`
	Oversold   float64 `json:"oversold" yaml:"oversold"`

	// Fallbacks; zero disables.
	MomentumPct float64 `json:"momentum_pct" yaml:"momentum_pct"`
	SpreadPct   float64 `json:"spread_pct" yaml:"spread_pct"`
}

// Single emits at most one signal per bar under MainTag.
type Single struct {
	name string
	Rules
}

var _ Classifier = (*Single)(nil)

// Aggressive is the fast EMA 2/5 classifier with wide RSI bands and
// momentum/spread fallbacks that fire on almost any drift.
func Aggressive() *Single {
	return &Single{
		name: "aggressive",
		Rules: Rules{
			Params:      indicators.Params{Fast: 2, Slow: 5, RSI: 4, MomentumLookback: 3},
			Overbought:  60,
			Oversold:    40,
			MomentumPct: 0.05,
			SpreadPct:   0.01,
		},
	}
}

// Conservative is EMA 5/13 with an RSI-filtered crossover and 75/25 bands.
func Conservative() *Single {
	return &Single{
		name: "conservative",
		Rules: Rules{
			Params:          indicators.Params{Fast: 5, Slow: 13, RSI: 14},
			MinBars:         20,
			CrossFilter:     true,
			CrossOverbought: 70,
			CrossOversold:   30,
			Overbought:      75,
			Oversold:        25,
		},
	}
}

// NewSingle builds a single-signal classifier from explicit rules.
func NewSingle(name string, r Rules) *Single {
	return &Single{name: name, Rules: r}
}

func (s *Single) Name() string              { return s.name }
func (s *Single) Tags() []string            { return []string{MainTag} }
func (s *Single) Params() indicators.Params { return s.Rules.Params }

func (s *Single) Evaluate(in Input) []Decision {
	return []Decision{{Tag: MainTag, Signal: s.Classify(in.Frame, in.Index)}}
}

// Classify returns the signal for bar i of f.
func (s *Single) Classify(f indicators.Frame, i int) Signal {
	if !inRange(f, i) || i+1 < s.MinBars {
		return Hold
	}
	snap := f.At(i)
	if !snap.RSIDefined() {
		return Hold
	}
	rsi := snap.RSI

	if crossUp(f, i) && (!s.CrossFilter || rsi < s.CrossOverbought) {
		return Buy
	}
	if crossDown(f, i) && (!s.CrossFilter || rsi > s.CrossOversold) {
		return Short
	}

	if rsi > s.Overbought {
		return SellOverbought
	}
	if rsi < s.Oversold {
		return BuyOversold
	}

	if s.MomentumPct > 0 {
		up := snap.TrendUp()
		if up && snap.MomentumPct > s.MomentumPct {
			return Buy
		}
		if !up && snap.MomentumPct < -s.MomentumPct {
			return Short
		}
	}

	if s.SpreadPct > 0 {
		spread := snap.SpreadPct()
		if spread > s.SpreadPct {
			return Buy
		}
		if spread < -s.SpreadPct {
			return Short
		}
	}

	return Hold
}

func (s *Single) apply(t Tuning) {
	s.Rules.Params = t.params(s.Rules.Params)
	if t.MinBars > 0 {
		s.MinBars = t.MinBars
	}
	if t.Overbought > 0 {
		s.Overbought = t.Overbought
	}
	if t.Oversold > 0 {
		s.Oversold = t.Oversold
	}
}
