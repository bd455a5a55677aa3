// Package journal records the append-only trade log.
package journal

import (
	"errors"
	"strings"
	"sync"
	"time"
)

type Action string

const (
	Open     Action = "OPEN"
	CloseSL  Action = "CLOSE_SL"
	CloseTP  Action = "CLOSE_TP"
	CloseRev Action = "CLOSE_REV"
	CloseEnd Action = "CLOSE_END"
	Death    Action = "DEATH"
)

// IsClose reports whether the action closes a position.
func (a Action) IsClose() bool { return strings.HasPrefix(string(a), "CLOSE_") }

// Event is one trade-log record. Fields that do not apply to an action are zero.
type Event struct {
	ID         string
	Time       time.Time
	Action     Action
	Strategy   string
	Side       string
	Price      float64 // market price at the event
	Entry      float64 // entry price of the position (closes)
	Quantity   float64
	Size       float64 // collateral committed (opens)
	PnLPercent float64 // realized percent (closes)
	Cash       float64 // cash after the event
	Portfolio  float64 // total value after the event
	Adaptive   bool
	Reason     string
}

// Won reports whether a close event realized a profit.
func (e Event) Won() bool { return e.Action.IsClose() && e.PnLPercent > 0 }

type Journal interface {
	Record(Event) error
	Close() error
}

// Memory keeps events in memory. It is safe for concurrent use.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Record(e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

// Events returns a copy of everything recorded so far.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

func (m *Memory) Close() error { return nil }

// Multi fans each event out to every journal.
type Multi []Journal

func (m Multi) Record(e Event) error {
	var errs []error
	for _, j := range m {
		if err := j.Record(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, j := range m {
		if err := j.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every event.
var Discard Journal = discard{}

type discard struct{}

func (discard) Record(Event) error { return nil }
func (discard) Close() error       { return nil }
