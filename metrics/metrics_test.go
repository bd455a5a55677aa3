package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/papertrader/engine"
	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/risk"
	"github.com/rustyeddy/papertrader/strategies"
)

func TestRecorderOnTick(t *testing.T) {
	r := NewRecorder(prometheus.NewRegistry())

	r.OnTick(engine.Report{
		Price:     64000,
		Value:     10050,
		Cash:      9550,
		Exposure:  500,
		Positions: 1,
		Risk:      risk.Decision{Allowed: false, Status: risk.LossStreakPaused},
		RiskState: risk.State{ConsecutiveLosses: 3},
		Decisions: []strategies.Decision{
			{Tag: "TREND", Signal: strategies.Buy},
			{Tag: "MEANREV", Signal: strategies.SellOverbought},
		},
	})
	r.OnTick(engine.Report{Risk: risk.Decision{Allowed: true}})

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Ticks))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.RiskPaused))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Decisions.WithLabelValues("TREND", "BUY")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Decisions.WithLabelValues("MEANREV", "SELL_OVERBOUGHT")))
}

func TestRecorderGauges(t *testing.T) {
	r := NewRecorder(prometheus.NewRegistry())
	r.OnTick(engine.Report{
		Price: 64000, Value: 10050, Cash: 9550, Exposure: 500, Positions: 1,
		RiskState: risk.State{ConsecutiveLosses: 3},
	})
	assert.Equal(t, 64000.0, testutil.ToFloat64(r.Price))
	assert.Equal(t, 10050.0, testutil.ToFloat64(r.Value))
	assert.Equal(t, 9550.0, testutil.ToFloat64(r.Cash))
	assert.Equal(t, 500.0, testutil.ToFloat64(r.Exposure))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.OpenPositions))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.ConsecutiveLosses))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.RiskPaused))
}

func TestRecorderTrades(t *testing.T) {
	r := NewRecorder(prometheus.NewRegistry())

	r.OnOpen(journal.Event{Action: journal.Open, Side: "LONG"})
	r.OnClose(journal.Event{Action: journal.CloseTP, Side: "LONG", PnLPercent: 3.2})
	r.OnClose(journal.Event{Action: journal.CloseSL, Side: "SHORT", PnLPercent: -2.1})
	r.OnClose(journal.Event{Action: journal.CloseSL, Side: "SHORT", PnLPercent: -2.0})

	assert.Equal(t, 1.0, testutil.ToFloat64(r.Trades.WithLabelValues("open")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Trades.WithLabelValues("win")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.Trades.WithLabelValues("loss")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.Exits.WithLabelValues("CLOSE_SL", "SHORT")))

	assert.Equal(t, 0.0, testutil.ToFloat64(r.Halted))
	r.OnKill(journal.Event{Action: journal.Death})
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Halted))
}

func TestRegisterTwiceOnSameRegistryPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewRecorder(reg)
	assert.Panics(t, func() { NewRecorder(reg) })
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)
	r.OnTick(engine.Report{Price: 64000, Risk: risk.Decision{Allowed: true}})

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "papertrader_ticks_total 1")
	assert.Contains(t, string(body), "papertrader_price_usd 64000")
}
