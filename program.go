package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"git.lost.host/meutraa/stepchart/internal/audio"
	"git.lost.host/meutraa/stepchart/internal/config"
	"git.lost.host/meutraa/stepchart/internal/game"
	"git.lost.host/meutraa/stepchart/internal/input"
	"git.lost.host/meutraa/stepchart/internal/judge"
	"git.lost.host/meutraa/stepchart/internal/render"
	"git.lost.host/meutraa/stepchart/internal/score"
	"git.lost.host/meutraa/stepchart/internal/session"
	"git.lost.host/meutraa/stepchart/internal/theme"
	"git.lost.host/meutraa/stepchart/pkg/logger"
	"git.lost.host/meutraa/stepchart/pkg/metrics"
	"github.com/eiannone/keyboard"
)

var ErrNoMusic = errors.New("chart has no playable music")

// Program plays one difficulty of a chart in the terminal.
type Program struct {
	Config  *config.Config
	Log     logger.Logger
	Metrics *metrics.Manager
	Scorer  score.Scorer
	Theme   theme.Theme

	chart *game.Chart
	key   game.DifficultyKey

	renderer  *render.DefaultRenderer
	playfield *render.Playfield
	session   *session.Session
	player    *audio.Player

	keys    <-chan keyboard.KeyEvent
	events  chan input.KeyEvent
	lastAt  float64
	quit    bool
	drawing bool
	stopped context.CancelFunc
}

func (p *Program) Init(ctx context.Context, chart *game.Chart, key game.DifficultyKey, keys <-chan keyboard.KeyEvent) error {
	if nil == chart.Music.URL {
		return fmt.Errorf("%w: %q", ErrNoMusic, chart.Music.File)
	}
	jc, err := p.Config.Judge()
	if nil != err {
		return err
	}

	p.chart, p.key, p.keys = chart, key, keys
	p.renderer = render.NewDefaultRenderer(os.Stdout)
	columns, rows, err := p.renderer.Size()
	if nil != err {
		return fmt.Errorf("unable to get terminal size: %w", err)
	}

	layout := p.Config.Layout(rows)
	p.playfield = render.NewPlayfield(p.renderer, p.Theme, layout, columns, rows, p.Config.Scroll.Spacing)
	p.session, err = session.New(chart, key, jc, p.Config.RollWindow,
		judge.WithLayout(layout),
		judge.WithListener(p.playfield),
		judge.WithListener(judge.ListenerFunc(func(e judge.Event) {
			p.Metrics.RecordJudgement(e.Result.String(), e.Combo)
		})),
	)
	if nil != err {
		return err
	}
	p.lastAt = -p.Config.Delay

	ctx, p.stopped = context.WithCancel(ctx)
	p.events = make(chan input.KeyEvent, 128)
	source := &input.KeyboardSource{Keys: []rune(p.Config.Keys), RepeatTimeout: p.Config.RepeatTimeout}
	go func() {
		if err := source.Read(ctx, p.keys, p.events); nil != err && !errors.Is(err, context.Canceled) {
			p.Log.Error(ctx, "keyboard stopped", logger.Error(err))
		}
	}()

	delay := time.Duration(p.Config.Delay * float64(time.Second))
	p.player, err = audio.Play(chart.Music.URL, delay, p.Config.Rate)
	if nil != err {
		p.stopped()
		return err
	}
	p.Metrics.RecordSession()
	p.Log.Info(ctx, "playing",
		logger.String("title", chart.Title),
		logger.String("difficulty", string(key)),
		logger.String("music", chart.Music.URL.String()),
		logger.Float64("rate", p.Config.Rate),
	)
	if err := p.renderer.Init(); nil != err {
		return err
	}
	p.drawing = true
	return nil
}

// Deinit restores the terminal and stops the music, however far Init got.
func (p *Program) Deinit() {
	if nil != p.stopped {
		p.stopped()
	}
	if p.drawing {
		if err := p.renderer.Deinit(); nil != err {
			p.Log.Warn(context.Background(), "unable to restore terminal", logger.Error(err))
		}
		p.drawing = false
	}
	if nil != p.player {
		if err := p.player.Close(); nil != err {
			p.Log.Warn(context.Background(), "unable to close music", logger.Error(err))
		}
		p.player = nil
	}
}

// now is the chart time at wall time at, from the music position.
func (p *Program) now(at time.Time) float64 {
	audioSec := p.player.Position() - time.Since(at).Seconds()*p.Config.Rate
	return p.session.Timeline.ChartTime(audioSec + p.Config.Offset)
}

// Update applies every pending key event and reports whether to go on.
func (p *Program) Update() bool {
	for {
		select {
		case e, ok := <-p.events:
			if !ok {
				p.quit = true
				return false
			}
			// Music position moves in buffer sized steps
			p.lastAt = max(p.lastAt, p.now(e.Time))
			p.session.Input(input.Event{Column: e.Column, Pressed: e.Pressed, Repeat: e.Repeat, Released: e.Released, At: p.lastAt})
		case <-p.player.Done():
			return false
		default:
			now := p.now(time.Now())
			p.session.Tick(now)
			return now < p.session.End()
		}
	}
}

func (p *Program) Render() {
	now := p.now(time.Now())
	p.playfield.Draw(p.session.Timeline, now)
	p.playfield.DrawStats(p.session.Engine.State(), p.session.Engine.Accuracy())
}

// Run plays until the chart ends or the player quits. Finished sessions
// are saved.
func (p *Program) Run(ctx context.Context) (*score.History, error) {
	p.renderer.RenderLoop(p.Config.Scroll.FramePeriod, func(time.Duration) bool {
		cont := p.Update()
		p.Render()
		return cont
	})
	if p.quit {
		p.Log.Info(ctx, "quit before the end", logger.String("difficulty", string(p.key)))
		return nil, nil
	}

	state := p.session.Finish()
	result := score.Result{State: state, Accuracy: p.session.Engine.Accuracy(), Rate: p.Config.Rate}
	h, err := p.Scorer.Save(ctx, p.chart, p.key, p.session.Inputs(), result)
	if nil != err {
		return nil, err
	}
	p.Log.Info(ctx, "saved score",
		logger.String("id", h.ID.String()),
		logger.Any("score", state.Score),
		logger.Float64("accuracy", result.Accuracy),
		logger.Bool("full_combo", state.Counts[game.Miss] == 0),
	)
	return &h, nil
}

// pickDifficulty lists the playable difficulties and reads a digit.
func pickDifficulty(chart *game.Chart, keys <-chan keyboard.KeyEvent) (game.DifficultyKey, error) {
	playable := []game.Difficulty{}
	for _, d := range chart.Difficulties {
		if _, ok := chart.Notes[d.Key()]; ok {
			playable = append(playable, d)
		}
	}
	if len(playable) == 0 {
		return "", fmt.Errorf("%v has no playable difficulties", chart.Title)
	}
	if len(playable) == 1 {
		return playable[0].Key(), nil
	}

	for i, d := range playable {
		notes, holds, mines := chart.Counts(d.Key())
		fmt.Printf("%2v) %3v  %5v %4v %4v  %v\n", i, d.Rating, notes, holds, mines, d.Name)
	}
	key, ok := <-keys
	if !ok || key.Err != nil {
		return "", errors.New("unable to read difficulty")
	}
	i := strings.IndexRune("0123456789", key.Rune)
	if i < 0 || i >= len(playable) {
		return "", fmt.Errorf("no difficulty %q", key.Rune)
	}
	return playable[i].Key(), nil
}
