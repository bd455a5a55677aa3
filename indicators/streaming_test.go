package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/papertrader/market"
)

var (
	_ Indicator = &ExponentialMA{}
	_ Indicator = &WilderRSI{}
)

var start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestExponentialMA(t *testing.T) {
	t.Run("basic functionality", func(t *testing.T) {
		ema := NewEMA(3)
		assert.Equal(t, "EMA(3)", ema.Name())
		assert.Equal(t, 1, ema.Warmup())
		assert.False(t, ema.Ready())
		assert.False(t, Defined(ema.Value()))

		for i, c := range []float64{10, 11, 12, 13} {
			ema.Update(market.Bar{Time: start.Add(time.Duration(i) * time.Hour), Close: c})
		}
		assert.True(t, ema.Ready())
		assert.InDelta(t, 12.125, ema.Value(), 1e-9)
	})

	t.Run("reset", func(t *testing.T) {
		ema := NewEMA(3)
		ema.Update(market.Bar{Close: 5})
		ema.Reset()
		assert.False(t, ema.Ready())
	})

	t.Run("invalid period panics", func(t *testing.T) {
		assert.Panics(t, func() { NewEMA(0) })
	})

	t.Run("matches batch calculation", func(t *testing.T) {
		bars := market.FromCloses(start, time.Hour, 100, 101, 99, 98, 97, 100, 105, 103, 104)
		batch := EMA(bars.Closes(), 5)
		ema := NewEMA(5)
		for i, b := range bars {
			ema.Update(b)
			assert.InDelta(t, batch[i], ema.Value(), 1e-9, "index %d", i)
		}
	})
}

func TestWilderRSI(t *testing.T) {
	t.Run("basic functionality", func(t *testing.T) {
		rsi := NewRSI(4)
		assert.Equal(t, "RSI(4)", rsi.Name())
		assert.Equal(t, 5, rsi.Warmup())
		assert.False(t, rsi.Ready())
	})

	t.Run("matches batch calculation", func(t *testing.T) {
		bars := market.FromCloses(start, time.Hour, 100, 101, 99, 98, 97, 100, 105, 103, 104, 102, 101)
		batch := RSI(bars.Closes(), 4)
		rsi := NewRSI(4)
		for i, b := range bars {
			rsi.Update(b)
			if !Defined(batch[i]) {
				assert.False(t, rsi.Ready(), "index %d", i)
				continue
			}
			assert.True(t, rsi.Ready(), "index %d", i)
			assert.InDelta(t, batch[i], rsi.Value(), 1e-9, "index %d", i)
		}
	})

	t.Run("reset keeps period", func(t *testing.T) {
		rsi := NewRSI(2)
		for _, c := range []float64{1, 2, 3, 4} {
			rsi.Update(market.Bar{Close: c})
		}
		assert.True(t, rsi.Ready())
		rsi.Reset()
		assert.False(t, rsi.Ready())
		assert.Equal(t, "RSI(2)", rsi.Name())
	})

	t.Run("invalid period panics", func(t *testing.T) {
		assert.Panics(t, func() { NewRSI(-1) })
	})
}
