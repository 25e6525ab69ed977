package render

import (
	"image/color"
	"testing"
	"time"

	"git.lost.host/meutraa/stepchart/internal/game"
	"git.lost.host/meutraa/stepchart/internal/judge"
	"git.lost.host/meutraa/stepchart/internal/parser"
	"git.lost.host/meutraa/stepchart/internal/timeline"
	"github.com/smartystreets/goconvey/convey"
)

// At 60 bpm a beat lasts a second: a tap in column 0 at 4s and a hold in
// column 2 from 5s to 7s.
const chart = `#BPMS:0.000=60.000;
#NOTES:
     dance-single:
     :
     Easy:
     1:
     0,0,0,0,0:
0000
0000
0000
0000
,
1000
0020
0000
0030
;`

type screen struct {
	cells       map[[2]int]string
	decorations map[[2]int]string
}

func newScreen() *screen {
	return &screen{cells: map[[2]int]string{}, decorations: map[[2]int]string{}}
}

func (s *screen) Init() error   { return nil }
func (s *screen) Deinit() error { return nil }
func (s *screen) Flush() error  { return nil }

func (s *screen) AddDecoration(col, row int, content string, frames int) {
	s.decorations[[2]int{row, col}] = content
}

func (s *screen) RenderLoop(period time.Duration, render func(elapsed time.Duration) bool) {}

func (s *screen) Fill(row, column int, message string) {
	s.cells[[2]int{row, column}] = message
}

func (s *screen) FillColor(row, column int, c color.RGBA, message string) {
	s.Fill(row, column, message)
}

type plain struct{}

func (plain) RenderNote(n *game.Note) string { return "N" }
func (plain) RenderHitField(uint8) string    { return "-" }
func (plain) RenderHoldBody(n *game.Note, active bool) string {
	if active {
		return "!"
	}
	return "|"
}
func (plain) RenderJudgement(j game.Judgement) string { return j.String() }

func TestPlayfield(t *testing.T) {
	convey.Convey("Given a playfield of 24 rows judging at row 20", t, func() {
		c, err := (&parser.DefaultParser{}).Parse(chart, nil)
		convey.So(err, convey.ShouldBeNil)
		tl, err := timeline.New(c, "dance-single1")
		convey.So(err, convey.ShouldBeNil)

		s := newScreen()
		layout := judge.Layout{JudgeLine: 20, Direction: judge.Down, PixelsPerSecond: 2, NoteHeight: 1}
		p := NewPlayfield(s, plain{}, layout, 40, 24, 2)
		convey.So(p.Lanes, convey.ShouldEqual, [game.Columns]int{14, 18, 22, 26})

		convey.Convey("Notes scroll towards the judge line", func() {
			p.Draw(tl, 0)
			for _, col := range p.Lanes {
				convey.So(s.cells[[2]int{20, col}], convey.ShouldEqual, "-")
			}
			convey.So(s.cells[[2]int{12, 14}], convey.ShouldEqual, "N")
			convey.So(s.cells[[2]int{10, 22}], convey.ShouldEqual, "N")
			for row := 6; row < 10; row++ {
				convey.So(s.cells[[2]int{row, 22}], convey.ShouldEqual, "|")
			}

			p.Draw(tl, 1)
			convey.So(s.cells[[2]int{12, 14}], convey.ShouldEqual, " ")
			convey.So(s.cells[[2]int{14, 14}], convey.ShouldEqual, "N")
		})

		convey.Convey("Hit taps are not drawn", func() {
			tl.MarkHit(0, game.Marvelous, 4)
			p.Draw(tl, 3.5)
			convey.So(s.cells[[2]int{19, 14}], convey.ShouldBeEmpty)
		})

		convey.Convey("An active hold is held at the judge line", func() {
			tl.MarkHit(1, game.Marvelous, 5)
			tl.SetHoldActive(1, true)
			p.Draw(tl, 6)
			convey.So(s.cells[[2]int{20, 22}], convey.ShouldEqual, "N")
			convey.So(s.cells[[2]int{19, 22}], convey.ShouldEqual, "!")
			convey.So(s.cells[[2]int{18, 22}], convey.ShouldEqual, "!")
			convey.So(s.cells[[2]int{17, 22}], convey.ShouldBeEmpty)
		})

		convey.Convey("Judgements are shown in the middle", func() {
			p.OnJudgement(judge.Event{Result: game.Great, Combo: 3})
			convey.So(s.decorations[[2]int{12, 16}], convey.ShouldEqual, "Great")
			convey.So(s.decorations[[2]int{13, 16}], convey.ShouldStartWith, "3")
		})

		convey.Convey("Stats are drawn beside the lanes", func() {
			p.DrawStats(judge.State{Score: 1000, Combo: 1, MaxCombo: 1}, 1)
			convey.So(s.cells[[2]int{10, 2}], convey.ShouldContainSubstring, "1000")
			convey.So(s.cells[[2]int{11, 2}], convey.ShouldContainSubstring, "100.00%")
			convey.So(s.cells[[2]int{21, 2}], convey.ShouldContainSubstring, "Miss")
		})
	})
}
