// Package risk gates new positions on daily drawdown and losing streaks.
package risk

import (
	"fmt"
	"time"
)

type Policy struct {
	// Circuit breakers
	DailyLossLimitPct float64       `json:"daily_loss_limit_pct" yaml:"daily_loss_limit_pct"` // 5
	LossStreak        int           `json:"loss_streak" yaml:"loss_streak"`                   // 3
	PauseDuration     time.Duration `json:"pause_duration" yaml:"pause_duration"`             // 15m

	// Exposure limit; 0 disables
	MaxExposureFraction float64 `json:"max_exposure_fraction" yaml:"max_exposure_fraction"` // 0.10
}

func DefaultPolicy() Policy {
	return Policy{
		DailyLossLimitPct:   5,
		LossStreak:          3,
		PauseDuration:       15 * time.Minute,
		MaxExposureFraction: 0.10,
	}
}

func (p Policy) Validate() error {
	if p.DailyLossLimitPct <= 0 || p.DailyLossLimitPct > 100 {
		return fmt.Errorf("daily loss limit must be in (0,100], got %v", p.DailyLossLimitPct)
	}
	if p.LossStreak <= 0 {
		return fmt.Errorf("loss streak must be > 0, got %d", p.LossStreak)
	}
	if p.PauseDuration <= 0 {
		return fmt.Errorf("pause duration must be > 0, got %v", p.PauseDuration)
	}
	if p.MaxExposureFraction < 0 || p.MaxExposureFraction > 1 {
		return fmt.Errorf("max exposure fraction must be in [0,1], got %v", p.MaxExposureFraction)
	}
	return nil
}
