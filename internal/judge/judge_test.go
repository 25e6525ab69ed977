package judge_test

import (
	"testing"

	"git.lost.host/meutraa/stepchart/internal/game"
	"git.lost.host/meutraa/stepchart/internal/judge"
	"git.lost.host/meutraa/stepchart/internal/timeline"
	"github.com/smartystreets/goconvey/convey"
)

func TestCheckMiss(t *testing.T) {
	tap := &game.Note{Type: game.Tap}
	hold := &game.Note{Type: game.HoldStart}

	convey.Convey("Given notes scrolling down to a judge line at 100", t, func() {
		convey.Convey("Then a tap on the line is not missed", func() {
			convey.So(judge.CheckMiss(tap, &timeline.PlayNoteState{}, 100, 100, judge.Down, 40), convey.ShouldBeFalse)
		})
		convey.Convey("Then a tap past the line is missed", func() {
			convey.So(judge.CheckMiss(tap, &timeline.PlayNoteState{}, 101, 100, judge.Down, 40), convey.ShouldBeTrue)
		})
		convey.Convey("Then a tap that was hit is not missed", func() {
			convey.So(judge.CheckMiss(tap, &timeline.PlayNoteState{Hit: true}, 200, 100, judge.Down, 40), convey.ShouldBeFalse)
		})
		convey.Convey("Then checking a missed note again changes nothing", func() {
			convey.So(judge.CheckMiss(tap, &timeline.PlayNoteState{Miss: true}, 200, 100, judge.Down, 40), convey.ShouldBeFalse)
		})
		convey.Convey("Then a hold must pass by a whole note height", func() {
			convey.So(judge.CheckMiss(hold, &timeline.PlayNoteState{}, 140, 100, judge.Down, 40), convey.ShouldBeFalse)
			convey.So(judge.CheckMiss(hold, &timeline.PlayNoteState{}, 141, 100, judge.Down, 40), convey.ShouldBeTrue)
		})
		convey.Convey("Then an active hold is never missed here", func() {
			convey.So(judge.CheckMiss(hold, &timeline.PlayNoteState{Hit: true, HoldActive: true}, 500, 100, judge.Down, 40), convey.ShouldBeFalse)
		})
	})

	convey.Convey("Given notes scrolling up", t, func() {
		convey.So(judge.CheckMiss(tap, &timeline.PlayNoteState{}, 99, 100, judge.Up, 40), convey.ShouldBeTrue)
		convey.So(judge.CheckMiss(tap, &timeline.PlayNoteState{}, 101, 100, judge.Up, 40), convey.ShouldBeFalse)
	})
}

func TestLayout(t *testing.T) {
	convey.Convey("Given the default layout", t, func() {
		l := judge.DefaultLayout()

		convey.Convey("Then a note at the current time is on the judge line", func() {
			convey.So(l.Position(3, 3), convey.ShouldEqual, l.JudgeLine)
		})
		convey.Convey("Then future notes are before the line", func() {
			convey.So(l.Position(4, 3), convey.ShouldBeLessThan, l.JudgeLine)
		})
		convey.Convey("Then the miss line is one window past the judge line", func() {
			convey.So(l.MissLine(0.45), convey.ShouldAlmostEqual, l.JudgeLine+0.45*l.PixelsPerSecond)
			convey.So(l.Position(2, 2.46), convey.ShouldBeGreaterThan, l.MissLine(0.45))
			convey.So(l.Position(2, 2.44), convey.ShouldBeLessThan, l.MissLine(0.45))
		})
	})
}
