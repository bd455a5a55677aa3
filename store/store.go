// Package store persists the portfolio and risk state between ticks.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/rustyeddy/papertrader/risk"
	"github.com/rustyeddy/papertrader/sim"
)

// ErrNoState is returned by Load when nothing has been saved yet.
var ErrNoState = errors.New("no saved state")

// Snapshot is everything needed to resume trading.
type Snapshot struct {
	Portfolio sim.Portfolio
	Risk      risk.State
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{Portfolio: *s.Portfolio.Clone(), Risk: s.Risk}
}

type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, s Snapshot) error
}

// Memory keeps the last snapshot in memory. Used by backtests and tests.
type Memory struct {
	mu    sync.Mutex
	snap  Snapshot
	saved bool
	saves int
}

func NewMemory() *Memory { return &Memory{} }

// NewMemoryWith starts the store with s already saved.
func NewMemoryWith(s Snapshot) *Memory {
	return &Memory{snap: s.Clone(), saved: true}
}

func (m *Memory) Load(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.saved {
		return Snapshot{}, ErrNoState
	}
	return m.snap.Clone(), nil
}

func (m *Memory) Save(ctx context.Context, s Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = s.Clone()
	m.saved = true
	m.saves++
	return nil
}

// Saves reports how many times Save has been called.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
