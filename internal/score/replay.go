package score

import (
	"math"

	"git.lost.host/meutraa/stepchart/internal/game"
	"git.lost.host/meutraa/stepchart/internal/judge"
	"git.lost.host/meutraa/stepchart/internal/session"
	"git.lost.host/meutraa/stepchart/internal/timeline"
)

// Replay judges recorded inputs again, with any judge config. With the
// config they were played with it reproduces the saved result.
func Replay(chart *game.Chart, key game.DifficultyKey, history *History, config judge.Config, rollWindow float64, opts ...judge.Option) (*session.Session, error) {
	s, err := session.New(chart, key, config, rollWindow, opts...)
	if nil != err {
		return nil, err
	}
	for _, e := range history.Inputs {
		s.Input(e)
	}
	s.Finish()
	return s, nil
}

// Deviation is the mean and sample standard deviation of the timing error
// of every hit note, in seconds. Negative is early.
func Deviation(tl *timeline.Timeline) (mean, stdev float64) {
	n, sum := 0.0, 0.0
	for i := 0; i < tl.Len(); i++ {
		if s := tl.State(i); s.Hit {
			sum += s.HitSec - tl.Note(i).Sec
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	mean = sum / n
	if n < 2 {
		return mean, 0
	}
	for i := 0; i < tl.Len(); i++ {
		if s := tl.State(i); s.Hit {
			xi := s.HitSec - tl.Note(i).Sec - mean
			stdev += xi * xi
		}
	}
	return mean, math.Sqrt(stdev / (n - 1))
}
