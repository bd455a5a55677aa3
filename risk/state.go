package risk

import "time"

// DateLayout is the UTC calendar date used for daily rollover.
const DateLayout = "2006-01-02"

type Status string

const (
	Active           Status = "ACTIVE"
	DailyPaused      Status = "DAILY_PAUSED"
	LossStreakPaused Status = "LOSS_STREAK_PAUSED"
)

// State is the persisted governor state.
type State struct {
	DailyStartCapital float64   `json:"dailyStartCapital"`
	DailyDate         string    `json:"dailyDate"`
	ConsecutiveLosses int       `json:"consecutiveLosses"`
	PausedUntil       time.Time `json:"pausedUntil"`
	PauseReason       Status    `json:"pauseReason,omitempty"`
}

// NewState starts the day at now with capital.
func NewState(capital float64, now time.Time) State {
	return State{
		DailyStartCapital: capital,
		DailyDate:         Date(now),
	}
}

// Date returns the UTC calendar date of t.
func Date(t time.Time) string { return t.UTC().Format(DateLayout) }

// Paused reports whether the state is paused at now.
func (s State) Paused(now time.Time) bool {
	return !s.PausedUntil.IsZero() && now.Before(s.PausedUntil)
}

func (s *State) clearPause() {
	s.PausedUntil = time.Time{}
	s.PauseReason = ""
}

// nextMidnight is the start of the UTC day after t.
func nextMidnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}
