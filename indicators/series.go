package indicators

import "github.com/rustyeddy/papertrader/market"

// EMA calculates the Exponential Moving Average series for the given period.
//
// The series is seeded with the first price, so every index is defined and the
// output has the same length as the input.
func EMA(prices []float64, period int) []float64 {
	out := make([]float64, len(prices))
	if len(prices) == 0 {
		return out
	}
	return fill(out, prices, NewEMA(period))
}

// RSI calculates Wilder's Relative Strength Index series.
//
// Indices before period are Undefined. If the input has period or fewer
// prices, the whole output is Undefined.
func RSI(prices []float64, period int) []float64 {
	out := make([]float64, len(prices))
	if period <= 0 || period >= len(prices) {
		for i := range out {
			out[i] = Undefined()
		}
		return out
	}
	return fill(out, prices, NewRSI(period))
}

// fill replays prices through ind and records its value after each one.
func fill(out, prices []float64, ind Indicator) []float64 {
	for i, p := range prices {
		ind.Update(market.Bar{Close: p})
		out[i] = ind.Value()
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	return 100 - 100/(1+avgGain/avgLoss)
}

// split returns the positive and negative parts of a price delta, losses as
// positive magnitudes.
func split(delta float64) (gain, loss float64) {
	if delta > 0 {
		return delta, 0
	}
	return 0, -delta
}
