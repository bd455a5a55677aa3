package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/papertrader/risk"
	"github.com/rustyeddy/papertrader/sim"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func sample(t *testing.T) Snapshot {
	t.Helper()
	pf := sim.NewPortfolio(10000, now.Add(-time.Hour))
	pos, _, err := sim.OpenPosition(sim.Long, 64000, pf.Cash, 0.05, "TREND", now)
	require.NoError(t, err)
	require.NoError(t, pf.Add(pos))
	pf.TotalTrades = 3
	pf.LastCheck = now
	pf.LastSignal = now

	rs := risk.NewState(10000, now)
	rs.ConsecutiveLosses = 2
	rs.PausedUntil = now.Add(15 * time.Minute)
	rs.PauseReason = risk.LossStreakPaused
	return Snapshot{Portfolio: *pf, Risk: rs}
}

func assertSnapshotEqual(t *testing.T, want, got Snapshot) {
	t.Helper()
	assert.InDelta(t, want.Portfolio.Cash, got.Portfolio.Cash, 1e-9)
	assert.Equal(t, want.Portfolio.TotalTrades, got.Portfolio.TotalTrades)
	assert.True(t, want.Portfolio.LastCheck.Equal(got.Portfolio.LastCheck))
	assert.True(t, want.Portfolio.Start.Equal(got.Portfolio.Start))
	require.Len(t, got.Portfolio.Positions, len(want.Portfolio.Positions))
	for i := range want.Portfolio.Positions {
		w, g := want.Portfolio.Positions[i], got.Portfolio.Positions[i]
		assert.Equal(t, w.ID, g.ID)
		assert.Equal(t, w.Side, g.Side)
		assert.Equal(t, w.Strategy, g.Strategy)
		assert.InDelta(t, w.Quantity, g.Quantity, 1e-12)
	}
	assert.Equal(t, want.Risk.DailyDate, got.Risk.DailyDate)
	assert.Equal(t, want.Risk.ConsecutiveLosses, got.Risk.ConsecutiveLosses)
	assert.True(t, want.Risk.PausedUntil.Equal(got.Risk.PausedUntil))
	assert.Equal(t, want.Risk.PauseReason, got.Risk.PauseReason)
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Load(ctx)
	assert.ErrorIs(t, err, ErrNoState)

	s := sample(t)
	require.NoError(t, m.Save(ctx, s))
	assert.Equal(t, 1, m.Saves())

	// mutating the caller's copy must not leak into the store
	s.Portfolio.Positions[0].Strategy = "changed"

	got, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "TREND", got.Portfolio.Positions[0].Strategy)
}

func TestFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "state")
	f, err := NewFile(dir)
	require.NoError(t, err)

	_, err = f.Load(ctx)
	assert.ErrorIs(t, err, ErrNoState)

	want := sample(t)
	require.NoError(t, f.Save(ctx, want))

	got, err := f.Load(ctx)
	require.NoError(t, err)
	assertSnapshotEqual(t, want, got)

	_, err = os.Stat(filepath.Join(dir, PortfolioFile+".tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileFormat(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	f, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, f.Save(ctx, sample(t)))

	b, err := os.ReadFile(filepath.Join(dir, PortfolioFile))
	require.NoError(t, err)
	for _, key := range []string{`"cash"`, `"positions"`, `"totalTrades"`, `"lastCheck"`, `"lastSignalTime"`, `"startTime"`, `"halted"`, `"collateral"`} {
		assert.Contains(t, string(b), key)
	}

	b, err = os.ReadFile(filepath.Join(dir, RiskFile))
	require.NoError(t, err)
	for _, key := range []string{`"dailyStartCapital"`, `"dailyDate"`, `"consecutiveLosses"`, `"pausedUntil"`, `"pauseReason"`} {
		assert.Contains(t, string(b), key)
	}
}

func TestFileFailedSaveKeepsPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	f, err := NewFile(dir)
	require.NoError(t, err)

	want := sample(t)
	require.NoError(t, f.Save(ctx, want))

	// a directory in the way makes staging the risk document fail
	require.NoError(t, os.Mkdir(filepath.Join(dir, RiskFile+".tmp"), 0o755))
	next := sample(t)
	next.Portfolio.Cash += 1000
	next.Risk.ConsecutiveLosses++
	require.Error(t, f.Save(ctx, next))

	got, err := f.Load(ctx)
	require.NoError(t, err)
	assertSnapshotEqual(t, want, got)
	_, err = os.Stat(filepath.Join(dir, PortfolioFile+".tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileCorrupt(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, PortfolioFile), []byte("{not json"), 0o644))

	f, err := NewFile(dir)
	require.NoError(t, err)
	_, err = f.Load(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoState)
}

func TestFileMissingRisk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	f, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, f.Save(ctx, sample(t)))
	require.NoError(t, os.Remove(filepath.Join(dir, RiskFile)))

	got, err := f.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", got.Risk.DailyDate)
	assert.Len(t, got.Portfolio.Positions, 1)
}

// Set REDIS_ADDR to run against a live server.
func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()

	r, err := NewRedis(RedisConfig{Addr: addr, Prefix: fmt.Sprintf("papertrader-test-%d", time.Now().UnixNano())})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = r.Reset(context.Background())
		_ = r.Close()
	})

	_, err = r.Load(ctx)
	assert.ErrorIs(t, err, ErrNoState)

	want := sample(t)
	require.NoError(t, r.Save(ctx, want))
	got, err := r.Load(ctx)
	require.NoError(t, err)
	assertSnapshotEqual(t, want, got)
}

func TestRedisUnreachable(t *testing.T) {
	_, err := NewRedis(RedisConfig{Addr: "127.0.0.1:1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping")
}
