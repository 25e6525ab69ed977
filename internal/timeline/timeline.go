// Package timeline holds the notes of one difficulty for a play session,
// alongside the state of each note.
package timeline

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"sort"

	"git.lost.host/meutraa/stepchart/internal/game"
	"git.lost.host/meutraa/stepchart/internal/timing"
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

// Entry is a snapshot of a note and its state.
type Entry struct {
	Index int
	Note  game.Note
	State PlayNoteState
}

type Timeline struct {
	difficulty game.Difficulty
	notes      []game.Note
	states     []PlayNoteState
	model      *timing.Model
	offset     float64

	// Longest hold in seconds, so window queries can find holds that
	// started before the window
	longest float64

	// Notes before start are resolved and culled, notes from end on have
	// not been reached
	start, end int
}

// New starts a session for one difficulty of chart. The chart is not
// modified and can be reused for further sessions.
func New(chart *game.Chart, key game.DifficultyKey) (*Timeline, error) {
	d, ok := chart.Difficulty(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDifficulty, key)
	}
	model, err := timing.New(chart.BpmChanges, chart.Stops)
	if nil != err {
		return nil, err
	}
	t := &Timeline{
		difficulty: d,
		notes:      chart.Notes[key],
		states:     make([]PlayNoteState, len(chart.Notes[key])),
		model:      model,
		offset:     chart.Offset,
	}
	for i := range t.notes {
		if t.notes[i].IsHold() {
			t.longest = math.Max(t.longest, t.notes[i].SecLength)
		}
	}
	return t, nil
}

func (t *Timeline) Difficulty() game.Difficulty {
	return t.difficulty
}

func (t *Timeline) Timing() *timing.Model {
	return t.model
}

func (t *Timeline) Len() int {
	return len(t.notes)
}

// Note returns a pointer into the timeline. It identifies the note to
// activation providers and must not be modified.
func (t *Timeline) Note(i int) *game.Note {
	return &t.notes[i]
}

func (t *Timeline) State(i int) PlayNoteState {
	return t.states[i]
}

func (t *Timeline) Resolved(i int) bool {
	return t.states[i].Resolved(&t.notes[i])
}

// ChartTime converts a position in the music to chart time.
func (t *Timeline) ChartTime(audioSec float64) float64 {
	return audioSec + t.offset
}

// AudioTime is the inverse of ChartTime.
func (t *Timeline) AudioTime(chartSec float64) float64 {
	return chartSec - t.offset
}

// Duration is the chart time the last note ends at.
func (t *Timeline) Duration() float64 {
	end := 0.0
	for i := range t.notes {
		end = math.Max(end, t.notes[i].End())
	}
	return end
}

// MarkHit records the judgement of a pending note. Hold and roll heads
// stay unresolved until MarkFinished or MarkMissed.
func (t *Timeline) MarkHit(i int, result game.Judgement, sec float64) bool {
	s := &t.states[i]
	if s.Hit || s.Miss {
		return false
	}
	s.Hit = true
	s.Result = result
	s.HitSec = sec
	return true
}

// MarkMissed resolves a note as missed. It reports false, and changes
// nothing, if the note was already resolved.
func (t *Timeline) MarkMissed(i int) bool {
	s := &t.states[i]
	if s.Resolved(&t.notes[i]) {
		return false
	}
	s.Miss = true
	s.HoldActive = false
	s.VisibleHeight = nil
	return true
}

// MarkFinished resolves a hit hold or roll that was held to its end.
func (t *Timeline) MarkFinished(i int) bool {
	s := &t.states[i]
	if !t.notes[i].IsHold() || !s.Hit || s.Resolved(&t.notes[i]) {
		return false
	}
	s.Finished = true
	s.HoldActive = false
	s.VisibleHeight = nil
	return true
}

func (t *Timeline) SetHoldActive(i int, active bool) {
	t.states[i].HoldActive = active
}

func (t *Timeline) SetVisibleHeight(i int, height *float64) {
	t.states[i].VisibleHeight = height
}

// Active returns the window of notes that are neither culled nor beyond
// the look ahead.
func (t *Timeline) Active() (int, int) {
	return t.start, t.end
}

func (t *Timeline) SetActive(start, end int) {
	if start < 0 {
		start = 0
	}
	if end > len(t.notes) {
		end = len(t.notes)
	}
	if start > end {
		start = end
	}
	t.start, t.end = start, end
}

// Reset clears the state of every note for another attempt.
func (t *Timeline) Reset() {
	for i := range t.states {
		t.states[i] = PlayNoteState{}
	}
	t.start, t.end = 0, 0
}

// NotesInWindow yields, in order, every note that is relevant between from
// and to, including holds that started earlier and are still going.
// Iterating does not change the timeline and can be repeated.
func (t *Timeline) NotesInWindow(from, to float64) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		lo := sort.Search(len(t.notes), func(i int) bool {
			return t.notes[i].Sec >= from-t.longest
		})
		for i := lo; i < len(t.notes) && t.notes[i].Sec <= to; i++ {
			if t.notes[i].End() < from {
				continue
			}
			if !yield(Entry{Index: i, Note: t.notes[i], State: t.states[i]}) {
				return
			}
		}
	}
}

// RenderWindow is NotesInWindow around a cursor in chart time.
func (t *Timeline) RenderWindow(cursor, lookbehind, lookahead float64) iter.Seq[Entry] {
	return t.NotesInWindow(cursor-lookbehind, cursor+lookahead)
}

// Measures returns the bar lines up to the end of the last note.
func (t *Timeline) Measures() []game.Measure {
	last := 0.0
	for i := range t.notes {
		n := &t.notes[i]
		last = math.Max(last, math.Max(n.Beat, n.BeatEnd))
	}
	measures := []game.Measure{}
	for m := 0; float64(m*4) <= last; m++ {
		beat := float64(m * 4)
		measures = append(measures, game.Measure{Index: m, Beat: beat, Sec: t.model.BeatToSec(beat)})
	}
	return measures
}
