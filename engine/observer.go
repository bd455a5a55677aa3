package engine

import (
	"time"

	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/risk"
	"github.com/rustyeddy/papertrader/strategies"
)

// Report summarizes one completed tick.
type Report struct {
	Time        time.Time
	Price       float64
	Value       float64
	Cash        float64
	Exposure    float64
	Positions   int
	TotalTrades int
	Risk        risk.Decision
	RiskState   risk.State
	Decisions   []strategies.Decision
	Events      []journal.Event
}

// Observer is notified as the engine works. Calls happen on the ticking
// goroutine and must not block.
type Observer interface {
	OnTick(Report)
	OnOpen(journal.Event)
	OnClose(journal.Event)
	OnKill(journal.Event)
}

// Observers fans out to several observers.
type Observers []Observer

func (o Observers) OnTick(r Report) {
	for _, x := range o {
		x.OnTick(r)
	}
}

func (o Observers) OnOpen(e journal.Event) {
	for _, x := range o {
		x.OnOpen(e)
	}
}

func (o Observers) OnClose(e journal.Event) {
	for _, x := range o {
		x.OnClose(e)
	}
}

func (o Observers) OnKill(e journal.Event) {
	for _, x := range o {
		x.OnKill(e)
	}
}
