package timeline

import "git.lost.host/meutraa/stepchart/internal/game"

// PlayNoteState is what happened to a note during one play session.
type PlayNoteState struct {
	Hit        bool // The note, or the head of a hold, was judged
	Miss       bool
	Finished   bool // A hold or roll was kept active until its end
	HoldActive bool

	// How much of an active hold body is left to draw, nil when the whole
	// note is drawn
	VisibleHeight *float64

	// Set together with Hit
	Result game.Judgement
	HitSec float64
}

// Resolved reports whether the note has reached a terminal state.
func (s *PlayNoteState) Resolved(n *game.Note) bool {
	if s.Miss {
		return true
	}
	if n.IsHold() {
		return s.Finished
	}
	return s.Hit
}
