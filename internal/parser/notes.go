package parser

import (
	"strings"
	"unicode"

	"git.lost.host/meutraa/stepchart/internal/game"
	"git.lost.host/meutraa/stepchart/internal/timing"
)

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// decodeNotes turns measures of 4 character rows into notes. Each measure is
// 4 beats, split evenly between its rows.
func decodeNotes(measures []string, model *timing.Model) ([]game.Note, error) {
	notes := []game.Note{}

	// Index into notes of the open hold or roll head per column
	var open [game.Columns]int
	for i := range open {
		open[i] = -1
	}

	// A chart without rows splits into a single empty measure
	if len(measures) == 1 && stripSpace(measures[0]) == "" {
		return notes, nil
	}

	for m, measure := range measures {
		measure = stripSpace(measure)
		if len(measure)%game.Columns != 0 {
			return nil, &ParseError{Err: ErrRowLength, Located: true, Measure: m, Row: len(measure) / game.Columns}
		}
		rows := len(measure) / game.Columns
		for r := 0; r < rows; r++ {
			beat := float64(m*4) + float64(r)*4/float64(rows)
			row := measure[r*game.Columns : (r+1)*game.Columns]

			for c := 0; c < game.Columns; c++ {
				ch := row[c]
				if ch == '0' {
					continue
				}
				at := func(err error) error {
					return &ParseError{Err: err, Located: true, Measure: m, Row: r, Column: c, Char: ch}
				}
				t, ok := game.NoteTypeFromChar(ch)
				if !ok {
					return nil, at(ErrUnknownNoteChar)
				}

				switch t {
				case game.Tap, game.Mine:
					notes = append(notes, game.Note{
						Type:   t,
						Beat:   beat,
						Sec:    model.BeatToSec(beat),
						Column: uint8(c),
					})
				case game.HoldStart, game.RollStart:
					if open[c] >= 0 {
						return nil, at(ErrHoldAlreadyOpen)
					}
					open[c] = len(notes)
					notes = append(notes, game.Note{
						Type:   t,
						Beat:   beat,
						Sec:    model.BeatToSec(beat),
						Column: uint8(c),
					})
				case game.HoldEnd:
					// Close the head, the tail cell itself holds no note
					if open[c] < 0 {
						return nil, at(ErrUnmatchedHoldEnd)
					}
					head := &notes[open[c]]
					head.BeatEnd = beat
					head.SecEnd = model.BeatToSec(beat)
					head.BeatLength = head.BeatEnd - head.Beat
					head.SecLength = head.SecEnd - head.Sec
					open[c] = -1
				}
			}
		}
	}

	for c, i := range open {
		if i >= 0 {
			n := notes[i]
			return nil, &ParseError{
				Err:     ErrUnclosedHold,
				Located: true,
				Measure: int(n.Beat) / 4,
				Column:  c,
				Char:    n.Type.Char(),
			}
		}
	}
	return notes, nil
}
