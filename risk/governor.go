package risk

import (
	"fmt"
	"log"
	"time"
)

type Violation struct {
	Code string
	Msg  string
}

// Decision is the governor's answer to "may a new position open now?".
type Decision struct {
	Allowed    bool
	Status     Status
	Reason     string
	Violations []Violation
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
	if d.Reason == "" {
		d.Reason = msg
	}
}

// Governor applies a Policy to a State. It only gates opens; exits always run.
// Not safe for concurrent use; the engine serializes ticks.
type Governor struct {
	Policy Policy
	State  State
}

func NewGovernor(p Policy, s State) *Governor {
	return &Governor{Policy: p, State: s}
}

// Evaluate rolls the day over if needed, then reports whether new positions
// may open given the current portfolio value.
func (g *Governor) Evaluate(now time.Time, value float64) Decision {
	g.rollover(now, value)

	s := &g.State
	if s.Paused(now) {
		d := Decision{Status: s.PauseReason}
		if d.Status == "" {
			d.Status = LossStreakPaused
		}
		d.add(string(d.Status), fmt.Sprintf("paused until %s (%d consecutive losses)",
			s.PausedUntil.UTC().Format(time.RFC3339), s.ConsecutiveLosses))
		return d
	}
	s.clearPause()

	d := Decision{Allowed: true, Status: Active}
	if s.DailyStartCapital > 0 {
		lossPct := (1 - value/s.DailyStartCapital) * 100
		if lossPct >= g.Policy.DailyLossLimitPct {
			s.PausedUntil = nextMidnight(now)
			s.PauseReason = DailyPaused
			d.Status = DailyPaused
			d.add(string(DailyPaused), fmt.Sprintf("daily loss %.2f%% >= limit %.2f%%", lossPct, g.Policy.DailyLossLimitPct))
			log.Printf("[risk] daily loss limit hit: -%.2f%%, paused until %s", lossPct, s.PausedUntil.Format(time.RFC3339))
		}
	}
	return d
}

// rollover resets the daily baseline once per new UTC date.
func (g *Governor) rollover(now time.Time, value float64) {
	today := Date(now)
	if g.State.DailyDate == today {
		return
	}
	g.State.DailyStartCapital = value
	g.State.DailyDate = today
	g.State.ConsecutiveLosses = 0
	g.State.clearPause()
}

// RecordClose updates the loss streak after a position closes. A win resets
// the streak in any state; reaching the streak limit pauses new opens.
func (g *Governor) RecordClose(won bool, now time.Time) {
	s := &g.State
	if won {
		s.ConsecutiveLosses = 0
		return
	}
	s.ConsecutiveLosses++
	if s.ConsecutiveLosses >= g.Policy.LossStreak {
		s.PausedUntil = now.Add(g.Policy.PauseDuration)
		s.PauseReason = LossStreakPaused
		log.Printf("[risk] %d consecutive losses, paused until %s", s.ConsecutiveLosses, s.PausedUntil.UTC().Format(time.RFC3339))
	}
}

// CheckExposure reports a violation if opening collateral on top of what one
// strategy already holds would exceed MaxExposureFraction of value. The cap
// is per strategy; tags do not share it.
func (g *Governor) CheckExposure(held, collateral, value float64) *Violation {
	limit := g.Policy.MaxExposureFraction
	if limit <= 0 || value <= 0 {
		return nil
	}
	if held+collateral > limit*value {
		return &Violation{
			Code: "MAX_EXPOSURE",
			Msg: fmt.Sprintf("strategy exposure %.2f would exceed %.0f%% of %.2f",
				held+collateral, 100*limit, value),
		}
	}
	return nil
}
