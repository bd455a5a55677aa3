package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/rustyeddy/papertrader/indicators"
	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/pkg/id"
	"github.com/rustyeddy/papertrader/sim"
	"github.com/rustyeddy/papertrader/strategies"
)

// Tick runs one full decision cycle at now:
//  1. fetch bars and compute indicators
//  2. close positions on stop-loss, take-profit or reversal
//  3. ask the risk governor whether opens are allowed
//  4. open a position for each signalling tag without one
//  5. value the portfolio
//  6. halt if value fell below the kill threshold
//  7. persist
//
// A fetch failure returns ErrFetch and leaves state untouched. Once killed,
// every later call returns ErrKilled without doing any work.
func (e *Engine) Tick(ctx context.Context, now time.Time) (Report, error) {
	if err := e.begin(); err != nil {
		return Report{}, err
	}
	defer e.end()

	if e.pf.Halted {
		return Report{}, fmt.Errorf("%w: %w", ErrHalted, ErrKilled)
	}

	bars, err := e.src.Bars(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if err := bars.Validate(); err != nil {
		return Report{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	frame, err := indicators.Compute(bars, e.cls.Params())
	if err != nil {
		return Report{}, err
	}
	last := frame.Last()
	price := bars[last].Close
	e.lastPrice, e.lastTime = price, now

	decisions := e.cls.Evaluate(strategies.Input{
		Frame:      frame,
		Index:      last,
		Now:        now,
		LastSignal: e.pf.LastSignal,
		Start:      e.pf.Start,
	})
	byTag := make(map[string]strategies.Decision, len(decisions))
	for _, d := range decisions {
		byTag[d.Tag] = d
	}

	rep := Report{Time: now, Price: price, Decisions: decisions}
	e.status(now, price)

	// manage open positions
	for _, pos := range append([]sim.Position(nil), e.pf.Positions...) {
		pnl := sim.PnLPercent(pos.Side, pos.Entry, price)
		var action journal.Action
		switch {
		case pnl <= e.cfg.StopLossPct:
			action = journal.CloseSL
		case pnl >= e.cfg.TakeProfitPct:
			action = journal.CloseTP
		case byTag[pos.Strategy].Signal.Reverses(pos.Side):
			action = journal.CloseRev
		default:
			fmt.Fprintf(e.out, "  Holding [%s] %s: PnL %.2f%%\n", pos.Strategy, pos.Side, pnl)
			continue
		}
		ev := e.close(pos, price, now, action)
		e.gov.RecordClose(ev.PnLPercent > 0, now)
		rep.Events = append(rep.Events, ev)
	}

	// risk gate, then opens
	value := e.pf.Value(price)
	rep.Risk = e.gov.Evaluate(now, value)
	if rep.Risk.Allowed {
		for _, d := range decisions {
			if ev, ok := e.open(d, price, value, now); ok {
				rep.Events = append(rep.Events, ev)
			}
		}
	} else {
		fmt.Fprintf(e.out, "  Paused (%s): %s\n", rep.Risk.Status, rep.Risk.Reason)
	}

	value = e.pf.Value(price)
	e.pf.LastCheck = now
	rep.Value = value
	rep.Cash = e.pf.Cash
	rep.Exposure = e.pf.Exposure()
	rep.Positions = len(e.pf.Positions)
	rep.TotalTrades = e.pf.TotalTrades
	rep.RiskState = e.gov.State

	if threshold := e.cfg.KillFraction * e.cfg.InitialCapital; value < threshold {
		ev := journal.Event{
			ID:        id.At(now),
			Time:      now,
			Action:    journal.Death,
			Price:     price,
			Cash:      e.pf.Cash,
			Portfolio: value,
			Reason:    fmt.Sprintf("portfolio %.2f below %.0f%% of %.2f", value, 100*e.cfg.KillFraction, e.cfg.InitialCapital),
		}
		e.pf.Halted = true
		e.record(ev)
		rep.Events = append(rep.Events, ev)
		log.Printf("[engine] DEATH: %s", ev.Reason)
		fmt.Fprintf(e.out, "  DEATH: %s. Halting.\n", ev.Reason)
		if e.obs != nil {
			e.obs.OnKill(ev)
			e.obs.OnTick(rep)
		}
		if err := e.save(ctx); err != nil {
			return rep, err
		}
		return rep, ErrKilled
	}

	fmt.Fprintf(e.out, "  Portfolio: $%.2f (%.2f%%)\n", value, (value/e.cfg.InitialCapital-1)*100)
	if err := e.save(ctx); err != nil {
		return rep, err
	}
	if e.obs != nil {
		e.obs.OnTick(rep)
	}
	return rep, nil
}

// open opens a position for d if its tag is free and limits allow it.
func (e *Engine) open(d strategies.Decision, price, value float64, now time.Time) (journal.Event, bool) {
	side, ok := d.Signal.Side()
	if !ok || e.pf.Has(d.Tag) {
		return journal.Event{}, false
	}
	if v := e.gov.CheckExposure(e.pf.ExposureOf(d.Tag), e.pf.Cash*e.cfg.PositionSize, value); v != nil {
		log.Printf("[engine] skip %s %s: %s", d.Tag, d.Signal, v.Msg)
		return journal.Event{}, false
	}

	pos, cost, err := sim.OpenPosition(side, price, e.pf.Cash, e.cfg.PositionSize, d.Tag, now)
	if err != nil {
		log.Printf("[engine] skip %s %s: %v", d.Tag, d.Signal, err)
		return journal.Event{}, false
	}
	if err := e.pf.Add(pos); err != nil {
		log.Printf("[engine] skip %s %s: %v", d.Tag, d.Signal, err)
		return journal.Event{}, false
	}
	e.pf.LastSignal = now

	ev := journal.Event{
		ID:        id.At(now),
		Time:      now,
		Action:    journal.Open,
		Strategy:  d.Tag,
		Side:      string(side),
		Price:     price,
		Quantity:  pos.Quantity,
		Size:      cost,
		Cash:      e.pf.Cash,
		Portfolio: e.pf.Value(price),
		Adaptive:  d.Adaptive,
		Reason:    string(d.Signal),
	}
	adaptive := ""
	if d.Adaptive {
		adaptive = " (adaptive)"
	}
	fmt.Fprintf(e.out, "  OPEN [%s] %s%s: %.6f @ $%.2f (size: $%.2f)\n",
		d.Tag, side, adaptive, pos.Quantity, price, cost)
	e.record(ev)
	if e.obs != nil {
		e.obs.OnOpen(ev)
	}
	return ev, true
}

// close settles pos at price and journals it.
func (e *Engine) close(pos sim.Position, price float64, now time.Time, action journal.Action) journal.Event {
	c, _ := e.pf.Settle(pos.ID, price)
	ev := journal.Event{
		ID:         id.At(now),
		Time:       now,
		Action:     action,
		Strategy:   pos.Strategy,
		Side:       string(pos.Side),
		Price:      price,
		Entry:      pos.Entry,
		Quantity:   pos.Quantity,
		PnLPercent: c.PnLPercent,
		Cash:       e.pf.Cash,
		Portfolio:  e.pf.Value(price),
	}
	mark := "WIN"
	if !c.Won() {
		mark = "LOSS"
	}
	fmt.Fprintf(e.out, "  CLOSE [%s] (%s) %s: PnL %.2f%% | Cash=$%.2f\n",
		pos.Strategy, strings.TrimPrefix(string(action), "CLOSE_"), mark, c.PnLPercent, e.pf.Cash)
	e.record(ev)
	if e.obs != nil {
		e.obs.OnClose(ev)
	}
	return ev
}

// CloseAll closes every open position at the last seen price and persists.
// Backtests call it at the end of the replay with journal.CloseEnd.
func (e *Engine) CloseAll(ctx context.Context, action journal.Action) ([]journal.Event, error) {
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer e.end()

	if len(e.pf.Positions) == 0 {
		return nil, nil
	}
	if e.lastPrice <= 0 {
		return nil, ErrNoPrice
	}

	var out []journal.Event
	for _, pos := range append([]sim.Position(nil), e.pf.Positions...) {
		out = append(out, e.close(pos, e.lastPrice, e.lastTime, action))
	}
	return out, e.save(ctx)
}

func (e *Engine) status(now time.Time, price float64) {
	pos := "NONE"
	if len(e.pf.Positions) > 0 {
		parts := make([]string, 0, len(e.pf.Positions))
		for _, p := range e.pf.Positions {
			parts = append(parts, fmt.Sprintf("%s:%s@$%.0f", p.Strategy, p.Side, p.Entry))
		}
		pos = strings.Join(parts, ", ")
	}
	fmt.Fprintf(e.out, "[%s] %s=$%.2f | Portfolio=$%.2f | Cash=$%.2f | Pos=[%s] | Trades=%d\n",
		now.UTC().Format(time.RFC3339), e.cfg.Asset, price, e.pf.Value(price), e.pf.Cash, pos, e.pf.TotalTrades)
}
