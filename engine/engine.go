// Package engine runs the trading loop: fetch prices, manage open positions,
// consult the risk governor, open new positions and persist the result.
// Backtests and live trading drive the same Engine.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/market"
	"github.com/rustyeddy/papertrader/risk"
	"github.com/rustyeddy/papertrader/sim"
	"github.com/rustyeddy/papertrader/store"
	"github.com/rustyeddy/papertrader/strategies"
)

var (
	ErrFetch          = errors.New("price fetch failed")
	ErrKilled         = errors.New("portfolio below kill threshold")
	ErrHalted         = errors.New("engine halted")
	ErrTickInProgress = errors.New("tick already in progress")
	ErrNoPrice        = errors.New("no price seen yet")
)

// PriceSource returns the price history up to and including the latest bar.
type PriceSource interface {
	Bars(ctx context.Context) (market.Series, error)
}

// Scheduler yields tick times. ok=false ends the run.
type Scheduler interface {
	Next(ctx context.Context) (now time.Time, ok bool, err error)
}

// Config holds the trading parameters. Percentages are in percent units,
// fractions are in [0,1].
type Config struct {
	Asset          string  `json:"asset" yaml:"asset"`
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital"` // 10000
	PositionSize   float64 `json:"position_size" yaml:"position_size"`     // 0.05
	StopLossPct    float64 `json:"stop_loss_pct" yaml:"stop_loss_pct"`     // -2
	TakeProfitPct  float64 `json:"take_profit_pct" yaml:"take_profit_pct"` // 3
	KillFraction   float64 `json:"kill_fraction" yaml:"kill_fraction"`     // 0.5
}

func DefaultConfig() Config {
	return Config{
		Asset:          "BTC_USD",
		InitialCapital: 10000,
		PositionSize:   0.05,
		StopLossPct:    -2,
		TakeProfitPct:  3,
		KillFraction:   0.5,
	}
}

func (c Config) Validate() error {
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial capital must be > 0, got %v", c.InitialCapital)
	}
	if c.PositionSize <= 0 || c.PositionSize > 1 {
		return fmt.Errorf("position size must be in (0,1], got %v", c.PositionSize)
	}
	if c.StopLossPct >= 0 {
		return fmt.Errorf("stop loss must be negative, got %v", c.StopLossPct)
	}
	if c.TakeProfitPct <= 0 {
		return fmt.Errorf("take profit must be positive, got %v", c.TakeProfitPct)
	}
	if c.KillFraction < 0 || c.KillFraction >= 1 {
		return fmt.Errorf("kill fraction must be in [0,1), got %v", c.KillFraction)
	}
	return nil
}

// ValidatePolicy rejects a position size the policy's per-strategy exposure
// cap would refuse on every open.
func (c Config) ValidatePolicy(p risk.Policy) error {
	if p.MaxExposureFraction > 0 && c.PositionSize > p.MaxExposureFraction {
		return fmt.Errorf("position size %v exceeds max exposure fraction %v; raise the cap or set it to 0",
			c.PositionSize, p.MaxExposureFraction)
	}
	return nil
}

// Options wires an Engine together. Source, Classifier and Store are required.
type Options struct {
	Config     Config
	Policy     risk.Policy
	Source     PriceSource
	Classifier strategies.Classifier
	Store      store.Store
	Journal    journal.Journal // default journal.Discard
	Observer   Observer        // optional
	Out        io.Writer       // status lines, default io.Discard

	// Now stamps a fresh portfolio's start time when the store is empty.
	Now time.Time
}

type Engine struct {
	mu      sync.Mutex // guards running
	running bool

	// state is held for the duration of a tick
	state sync.RWMutex

	cfg     Config
	src     PriceSource
	cls     strategies.Classifier
	gov     *risk.Governor
	store   store.Store
	journal journal.Journal
	obs     Observer
	out     io.Writer

	pf        *sim.Portfolio
	lastPrice float64
	lastTime  time.Time
}

// New builds an engine and restores state from the store. A missing or
// unreadable snapshot starts a fresh portfolio.
func New(ctx context.Context, o Options) (*Engine, error) {
	if o.Source == nil || o.Classifier == nil || o.Store == nil {
		return nil, errors.New("engine: source, classifier and store are required")
	}
	if err := o.Config.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	if err := o.Policy.Validate(); err != nil {
		return nil, fmt.Errorf("risk policy: %w", err)
	}
	if err := o.Config.ValidatePolicy(o.Policy); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	if o.Journal == nil {
		o.Journal = journal.Discard
	}
	if o.Out == nil {
		o.Out = io.Discard
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}

	e := &Engine{
		cfg:     o.Config,
		src:     o.Source,
		cls:     o.Classifier,
		store:   o.Store,
		journal: o.Journal,
		obs:     o.Observer,
		out:     o.Out,
	}

	snap, err := o.Store.Load(ctx)
	switch {
	case err == nil:
		e.pf = snap.Portfolio.Clone()
		if e.pf.Positions == nil {
			e.pf.Positions = []sim.Position{}
		}
		e.gov = risk.NewGovernor(o.Policy, snap.Risk)
		log.Printf("[engine] resumed: cash=%.2f positions=%d trades=%d halted=%v",
			e.pf.Cash, len(e.pf.Positions), e.pf.TotalTrades, e.pf.Halted)
	case errors.Is(err, store.ErrNoState):
		e.fresh(o)
	default:
		log.Printf("[engine] unreadable state, starting fresh: %v", err)
		e.fresh(o)
	}
	return e, nil
}

func (e *Engine) fresh(o Options) {
	e.pf = sim.NewPortfolio(o.Config.InitialCapital, o.Now)
	e.gov = risk.NewGovernor(o.Policy, risk.NewState(o.Config.InitialCapital, o.Now))
}

// begin claims the engine for one operation.
func (e *Engine) begin() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return ErrTickInProgress
	}
	e.running = true
	e.state.Lock()
	return nil
}

func (e *Engine) end() {
	e.state.Unlock()
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
}

// Portfolio returns a copy of the current portfolio.
func (e *Engine) Portfolio() sim.Portfolio {
	e.state.RLock()
	defer e.state.RUnlock()
	return *e.pf.Clone()
}

// RiskState returns a copy of the governor state.
func (e *Engine) RiskState() risk.State {
	e.state.RLock()
	defer e.state.RUnlock()
	return e.gov.State
}

// Halted reports whether the kill switch has fired.
func (e *Engine) Halted() bool {
	e.state.RLock()
	defer e.state.RUnlock()
	return e.pf.Halted
}

// LastPrice is the close of the most recent tick.
func (e *Engine) LastPrice() (float64, time.Time) {
	e.state.RLock()
	defer e.state.RUnlock()
	return e.lastPrice, e.lastTime
}

func (e *Engine) Config() Config { return e.cfg }

// Run ticks at every time the scheduler yields until it is exhausted, the
// context is cancelled, the kill switch fires or state cannot be persisted.
// Fetch failures skip the tick and keep going.
func (e *Engine) Run(ctx context.Context, sched Scheduler) error {
	for {
		now, ok, err := sched.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		_, err = e.Tick(ctx, now)
		switch {
		case err == nil:
		case errors.Is(err, ErrFetch):
			log.Printf("[engine] tick %s skipped: %v", now.UTC().Format(time.RFC3339), err)
		default:
			return err
		}
	}
}

func (e *Engine) save(ctx context.Context) error {
	snap := store.Snapshot{Portfolio: *e.pf.Clone(), Risk: e.gov.State}
	if err := e.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}

func (e *Engine) record(ev journal.Event) {
	if err := e.journal.Record(ev); err != nil {
		log.Printf("[engine] journal %s: %v", ev.Action, err)
	}
}
