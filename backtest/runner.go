package backtest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rustyeddy/papertrader/engine"
	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/market"
	"github.com/rustyeddy/papertrader/risk"
	"github.com/rustyeddy/papertrader/sim"
	"github.com/rustyeddy/papertrader/store"
	"github.com/rustyeddy/papertrader/strategies"
)

// Runner drives a fresh engine over Bars with an in-memory store.
type Runner struct {
	Config     engine.Config
	Policy     risk.Policy
	Classifier strategies.Classifier
	Bars       market.Series
	Dataset    string // label for reports

	// Warmup is the first replayed bar index; 0 means DefaultWarmup.
	Warmup int

	Journal  journal.Journal // optional extra sink
	Observer engine.Observer // optional
	Out      io.Writer       // per-tick status lines
}

// Run replays every bar after warmup, closes whatever is still open with
// CLOSE_END and summarizes. A kill ends the replay early without error;
// Result.Killed reports it and positions are valued where they stand.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if r.Classifier == nil {
		return Result{}, errors.New("backtest: classifier is required")
	}
	warmup := r.Warmup
	if warmup <= 0 {
		warmup = DefaultWarmup
	}
	replay, err := NewReplay(r.Bars, warmup)
	if err != nil {
		return Result{}, err
	}

	first := replay.First()
	pf := sim.NewPortfolio(r.Config.InitialCapital, first)
	pf.LastSignal = first
	st := store.NewMemoryWith(store.Snapshot{
		Portfolio: *pf,
		Risk:      risk.NewState(r.Config.InitialCapital, first),
	})

	mem := journal.NewMemory()
	var sink journal.Journal = mem
	if r.Journal != nil {
		sink = journal.Multi{mem, r.Journal}
	}
	curve := &equity{}
	obs := engine.Observers{curve}
	if r.Observer != nil {
		obs = append(obs, r.Observer)
	}

	eng, err := engine.New(ctx, engine.Options{
		Config:     r.Config,
		Policy:     r.Policy,
		Source:     replay,
		Classifier: r.Classifier,
		Store:      st,
		Journal:    sink,
		Observer:   obs,
		Out:        r.Out,
		Now:        first,
	})
	if err != nil {
		return Result{}, err
	}

	killed := false
	if err := eng.Run(ctx, replay); err != nil {
		if !errors.Is(err, engine.ErrKilled) {
			return Result{}, fmt.Errorf("backtest: %w", err)
		}
		killed = true
	}
	if !killed {
		if _, err := eng.CloseAll(ctx, journal.CloseEnd); err != nil {
			return Result{}, fmt.Errorf("backtest close: %w", err)
		}
	}

	price, end := eng.LastPrice()
	held := eng.Portfolio()
	final := held.Value(price)
	curve.add(final)

	events := mem.Events()
	sum := journal.Summarize(events)
	res := Result{
		Strategy:       r.Classifier.Name(),
		Asset:          r.Config.Asset,
		Dataset:        r.Dataset,
		Start:          first,
		End:            end,
		Ticks:          curve.ticks,
		InitialCapital: r.Config.InitialCapital,
		FinalCapital:   final,
		ReturnPct:      (final/r.Config.InitialCapital - 1) * 100,
		MaxDDPct:       curve.maxDD,
		Trades:         sum.Trades,
		Wins:           sum.Wins,
		Losses:         sum.Losses,
		WinRate:        sum.WinRate(),
		Killed:         killed,
		Events:         events,
	}
	return res, nil
}

// Result summarizes one replay.
type Result struct {
	Strategy string
	Asset    string
	Dataset  string
	Start    time.Time
	End      time.Time
	Ticks    int

	InitialCapital float64
	FinalCapital   float64
	ReturnPct      float64
	MaxDDPct       float64

	Trades  int
	Wins    int
	Losses  int
	WinRate float64 // 0..1

	Killed bool
	Events []journal.Event
}

// NetPL is the money gained or lost over the run.
func (r Result) NetPL() float64 { return r.FinalCapital - r.InitialCapital }

// Closes returns only the close events, in order.
func (r Result) Closes() []journal.Event {
	var out []journal.Event
	for _, e := range r.Events {
		if e.Action.IsClose() {
			out = append(out, e)
		}
	}
	return out
}

// equity tracks the portfolio value after every tick for the drawdown figure.
type equity struct {
	ticks int
	peak  float64
	maxDD float64
}

func (q *equity) add(v float64) {
	if v > q.peak {
		q.peak = v
	}
	if q.peak > 0 {
		if dd := (1 - v/q.peak) * 100; dd > q.maxDD {
			q.maxDD = dd
		}
	}
}

func (q *equity) OnTick(r engine.Report) {
	q.ticks++
	q.add(r.Value)
}

func (q *equity) OnOpen(journal.Event)  {}
func (q *equity) OnClose(journal.Event) {}
func (q *equity) OnKill(journal.Event)  {}
