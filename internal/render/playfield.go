package render

import (
	"fmt"
	"math"

	"git.lost.host/meutraa/stepchart/internal/game"
	"git.lost.host/meutraa/stepchart/internal/judge"
	"git.lost.host/meutraa/stepchart/internal/theme"
	"git.lost.host/meutraa/stepchart/internal/timeline"
)

// JudgementFrames is how long a judgement stays on screen.
const JudgementFrames = 30

type cell struct {
	row, column int
}

// Playfield draws the notes of a timeline scrolling past the judge line.
type Playfield struct {
	Renderer Renderer
	Theme    theme.Theme
	Layout   judge.Layout

	Rows       int
	Lanes      [game.Columns]int // Terminal column of each chart column
	SideColumn int

	drawn []cell
}

// NewPlayfield centres the lanes in a terminal of width by rows, spacing
// columns apart.
func NewPlayfield(r Renderer, th theme.Theme, layout judge.Layout, width, rows, spacing int) *Playfield {
	p := &Playfield{Renderer: r, Theme: th, Layout: layout, Rows: rows}
	mc := width >> 1
	for i := range p.Lanes {
		p.Lanes[i] = mc + spacing*(2*i-game.Columns+1)
	}
	p.SideColumn = max(p.Lanes[0]-36, 2)
	return p
}

// Row is the terminal row of a note at sec, or false when it is off screen.
func (p *Playfield) Row(sec, now float64) (int, bool) {
	row := int(math.Round(p.Layout.Position(sec, now)))
	return row, row >= 1 && row <= p.Rows
}

// Draw redraws every visible note at chart time now.
func (p *Playfield) Draw(tl *timeline.Timeline, now float64) {
	for _, c := range p.drawn {
		p.Renderer.Fill(c.row, c.column, " ")
	}
	p.drawn = p.drawn[:0]

	judgeRow := int(math.Round(p.Layout.JudgeLine))
	for i, col := range p.Lanes {
		p.Renderer.Fill(judgeRow, col, p.Theme.RenderHitField(uint8(i)))
	}

	// Everything between the judge line and the far edge of the screen,
	// plus what has scrolled past it.
	ahead := float64(p.Rows) / p.Layout.PixelsPerSecond
	for e := range tl.RenderWindow(now, ahead, ahead) {
		if e.State.Resolved(&e.Note) || (e.State.Hit && !e.Note.IsHold()) {
			continue
		}
		col := p.Lanes[e.Note.Column]
		head := e.Note.Sec
		if e.State.HoldActive && head < now {
			head = now
		}
		if e.Note.IsHold() {
			p.drawBody(&e.Note, head, col, now, e.State.HoldActive)
		}
		if row, ok := p.Row(head, now); ok {
			p.put(row, col, p.Theme.RenderNote(&e.Note))
		}
	}
}

func (p *Playfield) drawBody(n *game.Note, head float64, col int, now float64, active bool) {
	from := int(math.Round(p.Layout.Position(head, now)))
	to := int(math.Round(p.Layout.Position(n.SecEnd, now)))
	step := 1
	if to < from {
		step = -1
	}
	for row := from + step; row != to+step; row += step {
		if row >= 1 && row <= p.Rows {
			p.put(row, col, p.Theme.RenderHoldBody(n, active))
		}
	}
}

func (p *Playfield) put(row, col int, s string) {
	p.Renderer.Fill(row, col, s)
	p.drawn = append(p.drawn, cell{row, col})
}

// DrawStats prints the running result beside the playfield.
func (p *Playfield) DrawStats(state judge.State, accuracy float64) {
	p.Renderer.Fill(10, p.SideColumn, fmt.Sprintf("      Score:  %8v", state.Score))
	p.Renderer.Fill(11, p.SideColumn, fmt.Sprintf("   Accuracy:  %7.2f%%", accuracy*100))
	p.Renderer.Fill(12, p.SideColumn, fmt.Sprintf("      Combo:  %8v", state.Combo))
	p.Renderer.Fill(13, p.SideColumn, fmt.Sprintf("  Max Combo:  %8v", state.MaxCombo))
	for i, n := range state.Counts {
		p.Renderer.Fill(16+i, p.SideColumn, fmt.Sprintf("%11v:  %8v", game.Judgement(i), n))
	}
}

// OnJudgement shows the judgement in the middle of the playfield.
func (p *Playfield) OnJudgement(e judge.Event) {
	row := p.Rows >> 1
	col := (p.Lanes[0]+p.Lanes[game.Columns-1])>>1 - 4
	p.Renderer.AddDecoration(col, row, p.Theme.RenderJudgement(e.Result), JudgementFrames)
	if e.Combo > 1 {
		p.Renderer.AddDecoration(col, row+1, fmt.Sprintf("%-9v", e.Combo), JudgementFrames)
	}
}
