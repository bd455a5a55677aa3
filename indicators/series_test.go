package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEMA(t *testing.T) {
	t.Run("seeded by first price", func(t *testing.T) {
		out := EMA([]float64{10, 11, 12, 13}, 3)
		require.Len(t, out, 4)
		assert.Equal(t, 10.0, out[0])
		// k = 0.5: 10, 10.5, 11.25, 12.125
		assert.InDelta(t, 10.5, out[1], 1e-9)
		assert.InDelta(t, 11.25, out[2], 1e-9)
		assert.InDelta(t, 12.125, out[3], 1e-9)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, EMA(nil, 5))
	})

	t.Run("constant series", func(t *testing.T) {
		for _, v := range EMA([]float64{7, 7, 7, 7, 7}, 2) {
			assert.Equal(t, 7.0, v)
		}
	})

	t.Run("pure", func(t *testing.T) {
		in := []float64{100, 101, 99, 98, 97, 100, 105}
		a := EMA(in, 5)
		b := EMA(in, 5)
		assert.Equal(t, a, b)
		assert.Equal(t, []float64{100, 101, 99, 98, 97, 100, 105}, in)
	})
}

func TestRSI(t *testing.T) {
	closes := []float64{100, 101, 99, 98, 97, 100, 105}

	t.Run("undefined before period", func(t *testing.T) {
		out := RSI(closes, 4)
		require.Len(t, out, len(closes))
		for i := 0; i < 4; i++ {
			assert.False(t, Defined(out[i]), "index %d", i)
		}
		for i := 4; i < len(out); i++ {
			assert.True(t, Defined(out[i]), "index %d", i)
		}
	})

	t.Run("wilder values", func(t *testing.T) {
		out := RSI(closes, 4)
		// seed: gains 1, losses 2+1+1=4 -> ag 0.25, al 1.0
		assert.InDelta(t, 20.0, out[4], 1e-9)
		// +3: ag (0.75+3)/4=0.9375, al 3/4=0.75 -> rs 1.25
		assert.InDelta(t, 100-100/2.25, out[5], 1e-9)
	})

	t.Run("too short is all undefined", func(t *testing.T) {
		for _, v := range RSI([]float64{1, 2, 3, 4}, 4) {
			assert.False(t, Defined(v))
		}
		for _, v := range RSI([]float64{1, 2}, 14) {
			assert.False(t, Defined(v))
		}
	})

	t.Run("no losses is 100", func(t *testing.T) {
		out := RSI([]float64{1, 2, 3, 4, 5, 6}, 3)
		assert.Equal(t, 100.0, out[3])
		assert.Equal(t, 100.0, out[5])
	})

	t.Run("bounded", func(t *testing.T) {
		prices := []float64{44, 44.3, 44.1, 43.6, 44.3, 44.8, 45.1, 45.4, 45.8, 46.1, 45.9, 46.2, 45.6, 46.3, 46.3, 46.0, 46.4, 46.2, 45.6, 46.2}
		for _, v := range RSI(prices, 14) {
			if Defined(v) {
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 100.0)
			}
		}
	})
}
