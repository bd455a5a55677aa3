package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day1 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newGovernor() *Governor {
	return NewGovernor(DefaultPolicy(), NewState(10000, day1))
}

func TestEvaluateActive(t *testing.T) {
	g := newGovernor()
	d := g.Evaluate(day1, 9800)
	assert.True(t, d.Allowed)
	assert.Equal(t, Active, d.Status)
	assert.Empty(t, d.Violations)
}

func TestDailyLossLimit(t *testing.T) {
	g := newGovernor()

	d := g.Evaluate(day1, 9500)
	require.False(t, d.Allowed)
	assert.Equal(t, DailyPaused, d.Status)
	assert.Equal(t, "DAILY_PAUSED", d.Violations[0].Code)
	assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), g.State.PausedUntil)

	// recovery later the same day does not lift the pause
	d = g.Evaluate(day1.Add(2*time.Hour), 10000)
	assert.False(t, d.Allowed)
	assert.Equal(t, DailyPaused, d.Status)

	// next UTC day rolls over and resumes
	next := time.Date(2025, 3, 2, 0, 30, 0, 0, time.UTC)
	d = g.Evaluate(next, 9400)
	assert.True(t, d.Allowed)
	assert.Equal(t, 9400.0, g.State.DailyStartCapital)
	assert.Equal(t, "2025-03-02", g.State.DailyDate)
}

func TestLossStreakPause(t *testing.T) {
	g := newGovernor()

	g.RecordClose(false, day1)
	g.RecordClose(false, day1.Add(time.Minute))
	assert.True(t, g.Evaluate(day1.Add(2*time.Minute), 9990).Allowed)

	closedAt := day1.Add(3 * time.Minute)
	g.RecordClose(false, closedAt)
	assert.Equal(t, 3, g.State.ConsecutiveLosses)
	assert.Equal(t, closedAt.Add(15*time.Minute), g.State.PausedUntil)

	d := g.Evaluate(closedAt.Add(14*time.Minute), 9990)
	assert.False(t, d.Allowed)
	assert.Equal(t, LossStreakPaused, d.Status)
	assert.Contains(t, d.Reason, "3 consecutive losses")

	d = g.Evaluate(closedAt.Add(15*time.Minute), 9990)
	assert.True(t, d.Allowed)
	assert.True(t, g.State.PausedUntil.IsZero())
	assert.Empty(t, g.State.PauseReason)
	// pause expiry does not reset the streak
	assert.Equal(t, 3, g.State.ConsecutiveLosses)

	// the next loss pauses again immediately
	g.RecordClose(false, closedAt.Add(20*time.Minute))
	assert.False(t, g.Evaluate(closedAt.Add(21*time.Minute), 9990).Allowed)
}

func TestWinResetsStreak(t *testing.T) {
	g := newGovernor()
	g.RecordClose(false, day1)
	g.RecordClose(false, day1)
	g.RecordClose(true, day1)
	assert.Equal(t, 0, g.State.ConsecutiveLosses)

	g.RecordClose(false, day1)
	g.RecordClose(false, day1)
	g.RecordClose(false, day1)
	require.True(t, g.State.Paused(day1))

	// a win while paused still resets the counter; the pause stands
	g.RecordClose(true, day1.Add(time.Minute))
	assert.Equal(t, 0, g.State.ConsecutiveLosses)
	assert.True(t, g.State.Paused(day1.Add(time.Minute)))
}

func TestRolloverOncePerDate(t *testing.T) {
	g := newGovernor()
	g.State.ConsecutiveLosses = 2

	next := time.Date(2025, 3, 2, 1, 0, 0, 0, time.UTC)
	g.Evaluate(next, 9000)
	assert.Equal(t, 9000.0, g.State.DailyStartCapital)
	assert.Equal(t, 0, g.State.ConsecutiveLosses)

	g.RecordClose(false, next)
	g.Evaluate(next.Add(time.Hour), 8800)
	g.Evaluate(next.Add(5*time.Hour), 8700)
	assert.Equal(t, 9000.0, g.State.DailyStartCapital)
	assert.Equal(t, 1, g.State.ConsecutiveLosses)
}

func TestRolloverUsesUTCDate(t *testing.T) {
	g := newGovernor()
	est := time.FixedZone("EST", -5*3600)
	// 20:00 EST on Mar 1 is 01:00 UTC on Mar 2
	g.Evaluate(time.Date(2025, 3, 1, 20, 0, 0, 0, est), 9900)
	assert.Equal(t, "2025-03-02", g.State.DailyDate)
	assert.Equal(t, 9900.0, g.State.DailyStartCapital)
}

func TestRolloverClearsLossStreakPause(t *testing.T) {
	g := newGovernor()
	late := time.Date(2025, 3, 1, 23, 55, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		g.RecordClose(false, late)
	}
	assert.True(t, g.State.Paused(late.Add(6*time.Minute)))

	d := g.Evaluate(late.Add(6*time.Minute), 9990)
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, g.State.ConsecutiveLosses)
}

func TestCheckExposure(t *testing.T) {
	g := newGovernor()
	assert.Nil(t, g.CheckExposure(0, 500, 10000))
	assert.Nil(t, g.CheckExposure(500, 475, 10000))
	v := g.CheckExposure(500, 600, 10000)
	require.NotNil(t, v)
	assert.Equal(t, "MAX_EXPOSURE", v.Code)

	g.Policy.MaxExposureFraction = 0
	assert.Nil(t, g.CheckExposure(5000, 5000, 10000))
}

func TestPolicyValidate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())

	p := DefaultPolicy()
	p.LossStreak = 0
	assert.Error(t, p.Validate())

	p = DefaultPolicy()
	p.DailyLossLimitPct = 0
	assert.Error(t, p.Validate())

	p = DefaultPolicy()
	p.MaxExposureFraction = 1.5
	assert.Error(t, p.Validate())
}
