// Package judge turns inputs and the passing of time into judgements,
// score and combo.
package judge

import (
	"git.lost.host/meutraa/stepchart/internal/game"
	"git.lost.host/meutraa/stepchart/internal/timeline"
)

// Direction is the way notes scroll across the screen.
type Direction int

const (
	Down Direction = 1
	Up   Direction = -1
)

// Layout maps chart time to a scroll position. Positions grow in the
// direction notes travel.
type Layout struct {
	JudgeLine       float64
	Direction       Direction
	PixelsPerSecond float64
	NoteHeight      float64
}

func DefaultLayout() Layout {
	return Layout{
		JudgeLine:       0,
		Direction:       Down,
		PixelsPerSecond: 500,
		NoteHeight:      40,
	}
}

// Position of a note at sec when the chart is at now.
func (l Layout) Position(sec, now float64) float64 {
	return l.JudgeLine - float64(l.Direction)*(sec-now)*l.PixelsPerSecond
}

// MissLine is where a note is too late to be hit, given the loosest window.
func (l Layout) MissLine(window float64) float64 {
	return l.JudgeLine + float64(l.Direction)*window*l.PixelsPerSecond
}

// CheckMiss reports whether a note at position has scrolled past
// judgeLine without being hit, and should now be marked missed.
// Notes that are already resolved, and holds that were hit, never miss
// here.
func CheckMiss(note *game.Note, state *timeline.PlayNoteState, position, judgeLine float64, direction Direction, noteHeight float64) bool {
	if state.Miss || state.Hit || state.Finished {
		return false
	}
	past := (position - judgeLine) * float64(direction)
	if note.IsHold() {
		// The head has to fully leave the line
		return past > noteHeight
	}
	return past > 0
}

// Judge classifies hitting note at inputSec.
func Judge(c *Config, m *Modifiers, note *game.Note, inputSec float64) (game.Judgement, error) {
	return c.Classify(inputSec-note.Sec, m.window())
}
