package judge

import (
	"errors"
	"fmt"

	"git.lost.host/meutraa/stepchart/internal/game"
)

var (
	ErrInvalidConfig = errors.New("invalid judge config")
	// ErrOutsideWindow is returned when a timing error is larger than the
	// loosest window. Such an input does not belong to the note at all.
	ErrOutsideWindow = errors.New("outside every judgement window")
)

// ComboEffect is what a judgement does to the combo.
type ComboEffect uint8

const (
	ComboIncrement ComboEffect = iota
	ComboKeep
	ComboBreak
)

type Tier struct {
	Window float64 // Seconds either side of the note, exclusive. Unused for Miss
	Score  uint64
	Weight float64 // Contribution to accuracy, 0 to 1
	Combo  ComboEffect
}

// Config holds every tunable of judging. Tiers are indexed by judgement
// and their windows must grow from Marvelous to Boo.
type Config struct {
	Tiers [game.JudgementCount]Tier

	// A hit hold or roll released less than this before its end still
	// finishes
	HoldGrace float64
}

func DefaultConfig() Config {
	return Config{
		Tiers: [game.JudgementCount]Tier{
			game.Marvelous: {Window: 0.20, Score: 1000, Weight: 1, Combo: ComboIncrement},
			game.Perfect:   {Window: 0.25, Score: 800, Weight: 0.98, Combo: ComboIncrement},
			game.Great:     {Window: 0.30, Score: 500, Weight: 0.85, Combo: ComboIncrement},
			game.Good:      {Window: 0.35, Score: 200, Weight: 0.6, Combo: ComboIncrement},
			game.Boo:       {Window: 0.45, Score: 50, Weight: 0.3, Combo: ComboKeep},
			game.Miss:      {Score: 0, Weight: 0, Combo: ComboBreak},
		},
		HoldGrace: 0,
	}
}

func (c *Config) Validate() error {
	prev := 0.0
	for j := game.Marvelous; j < game.Miss; j++ {
		w := c.Tiers[j].Window
		if w <= prev {
			return fmt.Errorf("%w: %v window %v must be larger than %v", ErrInvalidConfig, j, w, prev)
		}
		prev = w
	}
	for j, t := range c.Tiers {
		if t.Weight < 0 || t.Weight > 1 {
			return fmt.Errorf("%w: %v weight %v not within [0, 1]", ErrInvalidConfig, game.Judgement(j), t.Weight)
		}
	}
	if c.HoldGrace < 0 {
		return fmt.Errorf("%w: negative hold grace", ErrInvalidConfig)
	}
	return nil
}

// MaxWindow is the loosest window after applying multiplier.
func (c *Config) MaxWindow(multiplier float64) float64 {
	return c.Tiers[game.Boo].Window * multiplier
}

// Classify returns the tightest judgement whose window contains delta.
func (c *Config) Classify(delta, multiplier float64) (game.Judgement, error) {
	if delta < 0 {
		delta = -delta
	}
	for j := game.Marvelous; j < game.Miss; j++ {
		if delta < c.Tiers[j].Window*multiplier {
			return j, nil
		}
	}
	return game.Miss, fmt.Errorf("%w: %.3fs", ErrOutsideWindow, delta)
}

// Accuracy is the weighted mean of a judgement histogram, 0 when empty.
// It is always computed from the counts so it can not drift.
func (c *Config) Accuracy(counts [game.JudgementCount]uint32) float64 {
	total, sum := 0.0, 0.0
	for j, n := range counts {
		total += float64(n)
		sum += c.Tiers[j].Weight * float64(n)
	}
	if total == 0 {
		return 0
	}
	return sum / total
}
