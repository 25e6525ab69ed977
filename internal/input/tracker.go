// Package input turns key presses into column events and keeps track of
// which hold or roll each column is keeping alive.
package input

import "git.lost.host/meutraa/stepchart/internal/game"

// Event is a change on a column. At is chart time in seconds. A repeat is
// a column that is still down reporting in, it keeps holds and rolls alive
// but is never judged as a new press.
type Event struct {
	Column   uint8
	Pressed  bool
	Released bool
	Repeat   bool
	At       float64
}

// Tracker is the activation table read by the judge engine. Holds stay
// active while their column is down. Rolls stay active while they are
// pressed again within RollWindow of the last press.
type Tracker struct {
	RollWindow float64

	now         float64
	down        [game.Columns]bool
	lastPress   [game.Columns]float64
	lastRelease [game.Columns]float64
	bound       [game.Columns]*game.Note
}

func NewTracker(rollWindow float64) *Tracker {
	return &Tracker{RollWindow: rollWindow}
}

// Apply feeds an event to the tracker.
func (t *Tracker) Apply(e Event) {
	switch {
	case e.Pressed, e.Repeat:
		t.Press(e.Column, e.At)
	case e.Released:
		t.Release(e.Column, e.At)
	}
}

func (t *Tracker) Press(column uint8, sec float64) {
	if int(column) >= game.Columns {
		return
	}
	t.down[column] = true
	t.lastPress[column] = sec
	t.now = max(t.now, sec)
}

func (t *Tracker) Release(column uint8, sec float64) {
	if int(column) >= game.Columns {
		return
	}
	t.down[column] = false
	t.lastRelease[column] = sec
	t.now = max(t.now, sec)
}

// Bind makes a hit hold or roll the note its column keeps alive.
func (t *Tracker) Bind(note *game.Note) {
	if !note.IsHold() || int(note.Column) >= game.Columns {
		return
	}
	t.bound[note.Column] = note
}

// Expire moves the tracker to now. Notes that have ended stay bound so
// their release can still be asked for, but are no longer active.
func (t *Tracker) Expire(now float64) {
	t.now = now
}

func (t *Tracker) Down(column uint8) bool {
	return int(column) < game.Columns && t.down[column]
}

func (t *Tracker) Active(column uint8) *game.Note {
	if int(column) >= game.Columns {
		return nil
	}
	n := t.bound[column]
	if nil == n || t.now > n.SecEnd {
		return nil
	}
	switch n.Type {
	case game.HoldStart:
		if t.down[column] {
			return n
		}
	case game.RollStart:
		if t.now-t.lastPress[column] <= t.RollWindow {
			return n
		}
	}
	return nil
}

// ReleasedAt is when column stopped keeping its bound note alive. A hold
// that is still down has not been released yet, so it reports now.
func (t *Tracker) ReleasedAt(column uint8) float64 {
	if int(column) >= game.Columns {
		return t.now
	}
	n := t.bound[column]
	if nil != n && n.Type == game.RollStart {
		return t.lastPress[column] + t.RollWindow
	}
	if t.down[column] {
		return t.now
	}
	return t.lastRelease[column]
}

// Reset clears everything for another attempt.
func (t *Tracker) Reset() {
	*t = Tracker{RollWindow: t.RollWindow}
}
