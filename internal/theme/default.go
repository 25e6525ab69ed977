package theme

import (
	"fmt"
	"image/color"
	"math"

	"git.lost.host/meutraa/stepchart/internal/game"
)

type DefaultTheme struct {
}

func (t *DefaultTheme) RenderNote(note *game.Note) string {
	switch note.Type {
	case game.Mine:
		return paint(mineColor, mineSym)
	case game.RollStart:
		return paint(NoteColor(Quantization(note.Beat)), rollSym)
	}
	return paint(NoteColor(Quantization(note.Beat)), syms[note.Column%game.Columns])
}

func (t *DefaultTheme) RenderHoldBody(note *game.Note, active bool) string {
	c := holdColor
	if active {
		c = activeHoldColor
	}
	if note.Type == game.RollStart {
		return paint(c, rollBodySym)
	}
	return paint(c, holdBodySym)
}

func (t *DefaultTheme) RenderHitField(column uint8) string {
	return barSyms[column%game.Columns]
}

func (t *DefaultTheme) RenderJudgement(j game.Judgement) string {
	c, ok := judgementColors[j]
	if !ok {
		c = white
	}
	return fmt.Sprintf("\033[1m%v", paint(c, fmt.Sprintf("%-9v", j)))
}

func paint(c color.RGBA, s string) string {
	return fmt.Sprintf("\033[38;2;%v;%v;%vm%v\033[0m", c.R, c.G, c.B, s)
}

const (
	mineSym     = "⨯"
	rollSym     = "◆"
	holdBodySym = "┃"
	rollBodySym = "╏"
)

// Quantizations are the beat subdivisions notes are coloured by, as the
// number of notes per beat: 1 is a 1/4 note, 2 a 1/8 and so on.
var Quantizations = [...]int{1, 2, 3, 4, 5, 6, 8, 12, 16, 24, 32, 48, 64}

// Quantization is the coarsest subdivision beat falls on, or -1.
func Quantization(beat float64) int {
	for _, d := range Quantizations {
		x := beat * float64(d)
		if math.Abs(x-math.Round(x)) < 1e-3 {
			return d
		}
	}
	return -1
}

var (
	white           = color.RGBA{255, 255, 255, 255}
	mineColor       = color.RGBA{236, 30, 0, 255}
	holdColor       = color.RGBA{106, 106, 106, 255}
	activeHoldColor = color.RGBA{0, 236, 128, 255}

	syms    = [...]string{"⬤", "⬤", "⬤", "⬤"}
	barSyms = [...]string{"-", "-", "-", "-"}

	noteColors = map[int]color.RGBA{
		1:  {236, 30, 0, 255},    // 1/4 red
		2:  {0, 118, 236, 255},   // 1/8 blue
		3:  {106, 0, 236, 255},   // 1/12 purple
		4:  {236, 195, 0, 255},   // 1/16 yellow
		5:  {106, 106, 106, 255}, // 1/20 grey
		6:  {236, 0, 106, 255},   // 1/24 pink
		8:  {236, 128, 0, 255},   // 1/32 orange
		12: {173, 236, 236, 255}, // 1/48 light blue
		16: {0, 236, 128, 255},   // 1/64 green
		24: {106, 106, 106, 255}, // 1/96 grey
		32: {106, 106, 106, 255}, // 1/128 grey
		48: {110, 147, 89, 255},  // 1/192 olive
		64: {106, 106, 106, 255}, // 1/256 grey
	}

	judgementColors = map[game.Judgement]color.RGBA{
		game.Marvelous: {173, 236, 236, 255},
		game.Perfect:   {236, 195, 0, 255},
		game.Great:     {0, 236, 128, 255},
		game.Good:      {0, 118, 236, 255},
		game.Boo:       {106, 0, 236, 255},
		game.Miss:      {236, 30, 0, 255},
	}
)

// NoteColor is white for subdivisions without a colour.
func NoteColor(d int) color.RGBA {
	col, ok := noteColors[d]
	if !ok {
		return white
	}
	return col
}
