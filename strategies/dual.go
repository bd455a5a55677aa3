package strategies

import (
	"time"

	"github.com/rustyeddy/papertrader/indicators"
)

const (
	TrendTag   = "TREND"
	MeanRevTag = "MEANREV"
)

// How far adaptive mode moves each band from its base, in RSI points.
const (
	trendLoosen   = 10
	meanRevLoosen = 5
)

// Bands is an overbought/oversold pair.
type Bands struct {
	Overbought float64 `json:"overbought" yaml:"overbought"`
	Oversold   float64 `json:"oversold" yaml:"oversold"`
}

// Dual runs a trend-following crossover and an RSI mean-reversion bounce
// side by side, each under its own tag. After AdaptWindow without a signal
// both loosen their thresholds.
type Dual struct {
	params  indicators.Params
	MinBars int

	Trend         Bands // RSI filter on the crossover
	TrendAdaptive Bands
	NearCrossPct  float64 // adaptive only: fast within this % of slow counts as a cross

	MeanRev         Bands
	MeanRevAdaptive Bands

	AdaptWindow time.Duration
}

var _ Classifier = (*Dual)(nil)

func NewDual() *Dual {
	return &Dual{
		params:          indicators.Params{Fast: 5, Slow: 13, RSI: 14},
		MinBars:         20,
		Trend:           Bands{Overbought: 70, Oversold: 30},
		TrendAdaptive:   Bands{Overbought: 80, Oversold: 20},
		NearCrossPct:    0.1,
		MeanRev:         Bands{Overbought: 70, Oversold: 30},
		MeanRevAdaptive: Bands{Overbought: 65, Oversold: 35},
		AdaptWindow:     2 * time.Hour,
	}
}

func (d *Dual) Name() string              { return "dual" }
func (d *Dual) Tags() []string            { return []string{TrendTag, MeanRevTag} }
func (d *Dual) Params() indicators.Params { return d.params }

// Adaptive reports whether thresholds are loosened at in.Now. The reference
// is the last signal time, else the start time; with neither it is adaptive.
func (d *Dual) Adaptive(in Input) bool {
	ref := in.LastSignal
	if ref.IsZero() {
		ref = in.Start
	}
	if ref.IsZero() {
		return true
	}
	return in.Now.Sub(ref) > d.AdaptWindow
}

// Evaluate returns only actionable decisions.
func (d *Dual) Evaluate(in Input) []Decision {
	adaptive := d.Adaptive(in)
	var out []Decision
	if s := d.trend(in.Frame, in.Index, adaptive); s != Hold {
		out = append(out, Decision{Tag: TrendTag, Signal: s, Adaptive: adaptive})
	}
	if s := d.meanRev(in.Frame, in.Index, adaptive); s != Hold {
		out = append(out, Decision{Tag: MeanRevTag, Signal: s, Adaptive: adaptive})
	}
	return out
}

func (d *Dual) trend(f indicators.Frame, i int, adaptive bool) Signal {
	if !inRange(f, i) || i+1 < d.MinBars {
		return Hold
	}
	snap := f.At(i)
	if !snap.RSIDefined() {
		return Hold
	}

	b := d.Trend
	if adaptive {
		b = d.TrendAdaptive
	}

	bull, bear := crossUp(f, i), crossDown(f, i)
	if adaptive {
		gap := snap.SpreadPct()
		bull = bull || (gap > 0 && gap < d.NearCrossPct)
		bear = bear || (gap < 0 && -gap < d.NearCrossPct)
	}

	if bull && snap.RSI < b.Overbought {
		return Buy
	}
	if bear && snap.RSI > b.Oversold {
		return Short
	}
	return Hold
}

func (d *Dual) meanRev(f indicators.Frame, i int, adaptive bool) Signal {
	if !inRange(f, i) || i < 1 || i+1 < d.MinBars {
		return Hold
	}
	cur, prev := f.RSI[i], f.RSI[i-1]
	if !indicators.Defined(cur) || !indicators.Defined(prev) {
		return Hold
	}

	b := d.MeanRev
	if adaptive {
		b = d.MeanRevAdaptive
	}

	if prev < b.Oversold && cur > prev {
		return Buy
	}
	if prev > b.Overbought && cur < prev {
		return Short
	}
	return Hold
}

func (d *Dual) apply(t Tuning) {
	d.params = t.params(d.params)
	if t.MinBars > 0 {
		d.MinBars = t.MinBars
	}
	if t.Overbought > 0 {
		d.Trend.Overbought = t.Overbought
		d.MeanRev.Overbought = t.Overbought
	}
	if t.Oversold > 0 {
		d.Trend.Oversold = t.Oversold
		d.MeanRev.Oversold = t.Oversold
	}
	if t.AdaptWindow > 0 {
		d.AdaptWindow = t.AdaptWindow
	}
	if t.Overbought > 0 || t.Oversold > 0 {
		d.loosen()
	}
}

// loosen derives the adaptive bands from the base ones. The trend filter
// widens outward; the mean-reversion triggers move inward so a smaller
// excursion qualifies.
func (d *Dual) loosen() {
	d.TrendAdaptive = Bands{
		Overbought: clampRSI(d.Trend.Overbought + trendLoosen),
		Oversold:   clampRSI(d.Trend.Oversold - trendLoosen),
	}
	d.MeanRevAdaptive = Bands{
		Overbought: clampRSI(d.MeanRev.Overbought - meanRevLoosen),
		Oversold:   clampRSI(d.MeanRev.Oversold + meanRevLoosen),
	}
}

func clampRSI(v float64) float64 {
	return min(max(v, 0), 100)
}
