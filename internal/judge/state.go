package judge

import "git.lost.host/meutraa/stepchart/internal/game"

// State is the running result of a player.
type State struct {
	Counts   [game.JudgementCount]uint32
	Combo    uint32
	MaxCombo uint32
	Score    uint64
}

func (s State) Total() uint32 {
	total := uint32(0)
	for _, n := range s.Counts {
		total += n
	}
	return total
}

func (s State) Accuracy(c *Config) float64 {
	return c.Accuracy(s.Counts)
}
