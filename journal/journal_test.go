package journal

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC)

func sampleEvents() []Event {
	return []Event{
		{ID: "01A", Time: t0, Action: Open, Strategy: "TREND", Side: "LONG", Price: 100, Quantity: 5, Size: 500, Cash: 9500, Portfolio: 10000, Adaptive: true},
		{ID: "01B", Time: t0.Add(time.Hour), Action: CloseSL, Strategy: "TREND", Side: "LONG", Price: 98, Entry: 100, PnLPercent: -2, Cash: 9990, Portfolio: 9990},
		{ID: "01C", Time: t0.Add(2 * time.Hour), Action: Open, Strategy: "MEANREV", Side: "SHORT", Price: 98, Quantity: 5.09, Size: 499.5, Cash: 9490.5, Portfolio: 9990},
		{ID: "01D", Time: t0.Add(3 * time.Hour), Action: CloseTP, Strategy: "MEANREV", Side: "SHORT", Price: 95, Entry: 98, PnLPercent: 3.06, Cash: 10005.27, Portfolio: 10005.27},
	}
}

func TestActionIsClose(t *testing.T) {
	for _, a := range []Action{CloseSL, CloseTP, CloseRev, CloseEnd} {
		assert.True(t, a.IsClose(), a)
	}
	assert.False(t, Open.IsClose())
	assert.False(t, Death.IsClose())
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleEvents())
	assert.Equal(t, 2, s.Trades)
	assert.Equal(t, 1, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.Equal(t, 2, s.Opens)
	assert.InDelta(t, 0.5, s.WinRate(), 1e-12)
	assert.False(t, s.Killed)

	s = Summarize([]Event{{Action: Death}})
	assert.True(t, s.Killed)
	assert.Equal(t, 0.0, s.WinRate())
}

func TestMemoryAndMulti(t *testing.T) {
	a, b := NewMemory(), NewMemory()
	m := Multi{a, b, Discard}
	for _, e := range sampleEvents() {
		require.NoError(t, m.Record(e))
	}
	assert.Equal(t, sampleEvents(), a.Events())
	assert.Equal(t, a.Events(), b.Events())
	assert.NoError(t, m.Close())
}

type failing struct{}

func (failing) Record(Event) error { return errors.New("disk full") }
func (failing) Close() error       { return nil }

func TestMultiKeepsGoingOnError(t *testing.T) {
	mem := NewMemory()
	m := Multi{failing{}, mem}
	err := m.Record(Event{ID: "x", Action: Open})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Len(t, mem.Events(), 1)
}
