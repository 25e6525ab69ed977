// Package session drives one attempt at a difficulty: it feeds inputs to
// the activation tracker and the judge engine in a fixed order, so a
// recorded attempt judges the same way when it is replayed.
package session

import (
	"git.lost.host/meutraa/stepchart/internal/game"
	"git.lost.host/meutraa/stepchart/internal/input"
	"git.lost.host/meutraa/stepchart/internal/judge"
	"git.lost.host/meutraa/stepchart/internal/timeline"
)

type Session struct {
	Timeline *timeline.Timeline
	Engine   *judge.Engine
	Tracker  *input.Tracker

	inputs []input.Event
}

func New(chart *game.Chart, key game.DifficultyKey, config judge.Config, rollWindow float64, opts ...judge.Option) (*Session, error) {
	tl, err := timeline.New(chart, key)
	if nil != err {
		return nil, err
	}
	tracker := input.NewTracker(rollWindow)
	opts = append([]judge.Option{judge.WithActivation(tracker)}, opts...)
	engine, err := judge.NewEngine(tl, config, opts...)
	if nil != err {
		return nil, err
	}
	return &Session{Timeline: tl, Engine: engine, Tracker: tracker}, nil
}

// Tick advances the session to chart time now.
func (s *Session) Tick(now float64) {
	s.Tracker.Expire(now)
	s.Engine.Tick(now)
}

// Input applies an event at its own time. The session is first advanced to
// the event so anything that passed before it is resolved first. Only a
// press is judged, repeats and releases just move the tracker.
func (s *Session) Input(e input.Event) (judge.Hit, bool) {
	s.inputs = append(s.inputs, e)
	s.Tick(e.At)
	s.Tracker.Apply(e)

	var hit judge.Hit
	var ok bool
	if e.Pressed {
		hit, ok = s.Engine.Press(e.Column, e.At)
		if ok && hit.Note.IsHold() {
			s.Tracker.Bind(hit.Note)
		}
	}
	s.Engine.Tick(e.At)
	return hit, ok
}

// Inputs returns every event given to Input, in order.
func (s *Session) Inputs() []input.Event {
	return s.inputs
}

// End is a chart time by which every note is resolved.
func (s *Session) End() float64 {
	l := s.Engine.Layout()
	return s.Timeline.Duration() + s.Engine.Window() + l.NoteHeight/l.PixelsPerSecond + 1
}

// Finish resolves every remaining note.
func (s *Session) Finish() judge.State {
	s.Tick(s.End())
	return s.Engine.State()
}

// Reset starts another attempt on the same timeline.
func (s *Session) Reset(config judge.Config, opts ...judge.Option) error {
	s.Timeline.Reset()
	s.Tracker.Reset()
	opts = append([]judge.Option{judge.WithActivation(s.Tracker)}, opts...)
	engine, err := judge.NewEngine(s.Timeline, config, opts...)
	if nil != err {
		return err
	}
	s.Engine = engine
	s.inputs = nil
	return nil
}
