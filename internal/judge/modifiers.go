package judge

import (
	"math"

	"git.lost.host/meutraa/stepchart/internal/game"
)

// Modifiers let gameplay effects change judging without the engine
// knowing about them. The zero value changes nothing.
type Modifiers struct {
	// Scales every window, 0 is treated as 1
	WindowMultiplier float64
	// Applied to a judgement before it is scored
	Remap map[game.Judgement]game.Judgement
	// Scales the score of a judgement, after remapping
	ScoreMultiplier map[game.Judgement]float64
}

func (m *Modifiers) window() float64 {
	if m.WindowMultiplier <= 0 {
		return 1
	}
	return m.WindowMultiplier
}

func (m *Modifiers) remap(j game.Judgement) game.Judgement {
	if to, ok := m.Remap[j]; ok {
		return to
	}
	return j
}

func (m *Modifiers) score(j game.Judgement, base uint64) uint64 {
	mult, ok := m.ScoreMultiplier[j]
	if !ok {
		return base
	}
	if mult <= 0 {
		return 0
	}
	return uint64(math.Round(float64(base) * mult))
}

// ComboShield can save the combo from a breaking judgement.
type ComboShield interface {
	// Absorb reports whether this break is absorbed, using up the shield.
	Absorb() bool
}

// Shields absorbs as many breaks as it has charges.
type Shields struct {
	Charges int
}

func (s *Shields) Absorb() bool {
	if s.Charges <= 0 {
		return false
	}
	s.Charges--
	return true
}
