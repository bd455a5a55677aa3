// Package metrics exposes engine activity as Prometheus metrics.
//
//   - papertrader_ticks_total                      completed ticks
//   - papertrader_price_usd                        last close
//   - papertrader_portfolio_value_usd              cash plus open positions
//   - papertrader_cash_usd / _exposure_usd         cash and collateral at risk
//   - papertrader_open_positions                   open position count
//   - papertrader_trades_total{result}             open|win|loss
//   - papertrader_exits_total{reason,side}         closes by action and side
//   - papertrader_decisions_total{strategy,signal} classifier output
//   - papertrader_risk_paused                      1 while opens are blocked
//   - papertrader_consecutive_losses               current losing streak
//   - papertrader_halted                           1 once the kill switch fires
package metrics

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rustyeddy/papertrader/engine"
	"github.com/rustyeddy/papertrader/journal"
)

// Recorder implements engine.Observer.
type Recorder struct {
	Ticks             prometheus.Counter
	Price             prometheus.Gauge
	Value             prometheus.Gauge
	Cash              prometheus.Gauge
	Exposure          prometheus.Gauge
	OpenPositions     prometheus.Gauge
	Trades            *prometheus.CounterVec
	Exits             *prometheus.CounterVec
	Decisions         *prometheus.CounterVec
	RiskPaused        prometheus.Gauge
	ConsecutiveLosses prometheus.Gauge
	Halted            prometheus.Gauge
}

var _ engine.Observer = (*Recorder)(nil)

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "papertrader_ticks_total",
			Help: "Completed engine ticks",
		}),
		Price: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "papertrader_price_usd",
			Help: "Close of the latest bar",
		}),
		Value: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "papertrader_portfolio_value_usd",
			Help: "Cash plus the close value of open positions",
		}),
		Cash: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "papertrader_cash_usd",
			Help: "Uncommitted cash",
		}),
		Exposure: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "papertrader_exposure_usd",
			Help: "Collateral committed to open positions",
		}),
		OpenPositions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "papertrader_open_positions",
			Help: "Number of open positions",
		}),
		Trades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "papertrader_trades_total",
			Help: "Trades counted by result (open|win|loss)",
		}, []string{"result"}),
		Exits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "papertrader_exits_total",
			Help: "Closes split by reason and side",
		}, []string{"reason", "side"}),
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "papertrader_decisions_total",
			Help: "Classifier decisions by strategy tag and signal",
		}, []string{"strategy", "signal"}),
		RiskPaused: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "papertrader_risk_paused",
			Help: "1 while the risk governor blocks new positions",
		}),
		ConsecutiveLosses: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "papertrader_consecutive_losses",
			Help: "Current losing streak",
		}),
		Halted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "papertrader_halted",
			Help: "1 once the portfolio kill switch has fired",
		}),
	}
	reg.MustRegister(
		r.Ticks, r.Price, r.Value, r.Cash, r.Exposure, r.OpenPositions,
		r.Trades, r.Exits, r.Decisions,
		r.RiskPaused, r.ConsecutiveLosses, r.Halted,
	)
	return r
}

func (r *Recorder) OnTick(rep engine.Report) {
	r.Ticks.Inc()
	r.Price.Set(rep.Price)
	r.Value.Set(rep.Value)
	r.Cash.Set(rep.Cash)
	r.Exposure.Set(rep.Exposure)
	r.OpenPositions.Set(float64(rep.Positions))
	r.ConsecutiveLosses.Set(float64(rep.RiskState.ConsecutiveLosses))
	if rep.Risk.Allowed {
		r.RiskPaused.Set(0)
	} else {
		r.RiskPaused.Set(1)
	}
	for _, d := range rep.Decisions {
		r.Decisions.WithLabelValues(d.Tag, string(d.Signal)).Inc()
	}
}

func (r *Recorder) OnOpen(journal.Event) {
	r.Trades.WithLabelValues("open").Inc()
}

func (r *Recorder) OnClose(e journal.Event) {
	result := "loss"
	if e.Won() {
		result = "win"
	}
	r.Trades.WithLabelValues(result).Inc()
	r.Exits.WithLabelValues(string(e.Action), e.Side).Inc()
}

func (r *Recorder) OnKill(journal.Event) {
	r.Halted.Set(1)
}

// Handler serves g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve runs /metrics and /healthz on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	log.Printf("[metrics] serving on %s/metrics", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
