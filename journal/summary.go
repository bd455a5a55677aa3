package journal

// Summary aggregates close events.
type Summary struct {
	Trades int
	Wins   int
	Losses int
	Opens  int
	Killed bool
}

func (s Summary) WinRate() float64 {
	if s.Trades == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Trades)
}

func Summarize(events []Event) Summary {
	var s Summary
	for _, e := range events {
		switch {
		case e.Action == Open:
			s.Opens++
		case e.Action == Death:
			s.Killed = true
		case e.Action.IsClose():
			s.Trades++
			if e.Won() {
				s.Wins++
			} else {
				s.Losses++
			}
		}
	}
	return s
}
