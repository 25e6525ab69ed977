package judge

import (
	"math"

	"git.lost.host/meutraa/stepchart/internal/game"
	"git.lost.host/meutraa/stepchart/internal/timeline"
)

// Activation tells the engine which hold or roll is being kept alive on
// a column, if any.
type Activation interface {
	Active(column uint8) *game.Note
}

// Releases is an Activation that knows when a column stopped keeping its
// note alive. Without it a release is taken to happen at the first tick
// that sees the note inactive.
type Releases interface {
	ReleasedAt(column uint8) float64
}

// Event is emitted once for every judgeable note when it is resolved.
type Event struct {
	Index      int
	Note       game.Note
	Result     game.Judgement
	ScoreDelta uint64
	Combo      uint32
	Sec        float64
}

type Listener interface {
	OnJudgement(Event)
}

type ListenerFunc func(Event)

func (f ListenerFunc) OnJudgement(e Event) {
	f(e)
}

// Hit is the result of a press that found a note.
type Hit struct {
	Index  int
	Note   *game.Note
	Result game.Judgement
	Delta  float64 // Input minus note time, negative is early
}

type Option func(*Engine)

func WithModifiers(m Modifiers) Option {
	return func(e *Engine) { e.mods = m }
}

func WithLayout(l Layout) Option {
	return func(e *Engine) { e.layout = l }
}

func WithActivation(a Activation) Option {
	return func(e *Engine) { e.activation = a }
}

func WithComboShield(s ComboShield) Option {
	return func(e *Engine) { e.shield = s }
}

func WithListener(l Listener) Option {
	return func(e *Engine) { e.listeners = append(e.listeners, l) }
}

// Engine judges one timeline. It is not safe for concurrent use; feed
// presses and ticks from the game loop.
type Engine struct {
	config     Config
	mods       Modifiers
	layout     Layout
	timeline   *timeline.Timeline
	activation Activation
	shield     ComboShield
	listeners  []Listener

	state State

	// Release time of each hit hold that has been seen inactive
	released map[int]float64
}

func NewEngine(tl *timeline.Timeline, config Config, opts ...Option) (*Engine, error) {
	if err := config.Validate(); nil != err {
		return nil, err
	}
	e := &Engine{
		config:   config,
		layout:   DefaultLayout(),
		timeline: tl,
		released: map[int]float64{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.layout.PixelsPerSecond <= 0 || (e.layout.Direction != Down && e.layout.Direction != Up) {
		return nil, ErrInvalidConfig
	}
	return e, nil
}

func (e *Engine) Config() *Config {
	return &e.config
}

func (e *Engine) Layout() Layout {
	return e.layout
}

func (e *Engine) Timeline() *timeline.Timeline {
	return e.timeline
}

func (e *Engine) State() State {
	return e.state
}

func (e *Engine) Accuracy() float64 {
	return e.state.Accuracy(&e.config)
}

// Window is the loosest window with modifiers applied.
func (e *Engine) Window() float64 {
	return e.config.MaxWindow(e.mods.window())
}

func (e *Engine) Judge(note *game.Note, inputSec float64) (game.Judgement, error) {
	return Judge(&e.config, &e.mods, note, inputSec)
}

// Done reports whether every note has been resolved.
func (e *Engine) Done() bool {
	start, _ := e.timeline.Active()
	return start >= e.timeline.Len()
}

// Press judges a press on column at chart time sec against the closest
// pending note. It reports false if no note is close enough.
func (e *Engine) Press(column uint8, sec float64) (Hit, bool) {
	window := e.Window()
	best, distance := -1, math.Inf(1)
	for entry := range e.timeline.NotesInWindow(sec-window, sec+window) {
		n := &entry.Note
		if n.Column != column || !n.Judgeable() || entry.State.Hit || entry.State.Miss {
			continue
		}
		if d := math.Abs(sec - n.Sec); d < distance {
			best, distance = entry.Index, d
		}
	}
	if best < 0 {
		return Hit{}, false
	}

	note := e.timeline.Note(best)
	result, err := e.Judge(note, sec)
	if nil != err {
		return Hit{}, false
	}
	e.timeline.MarkHit(best, result, sec)
	if !note.IsHold() {
		e.resolve(best, result, sec)
	}
	return Hit{Index: best, Note: note, Result: result, Delta: sec - note.Sec}, true
}

// Tick advances the engine to chart time now. Notes that passed the miss
// line are missed, holds are tracked and resolved notes are culled.
func (e *Engine) Tick(now float64) {
	start, _ := e.timeline.Active()
	end := start
	for i := start; i < e.timeline.Len(); i++ {
		n := e.timeline.Note(i)
		if n.Sec > now {
			break
		}
		end = i + 1
		if e.timeline.Resolved(i) {
			continue
		}
		e.check(i, n, now)
	}
	for start < e.timeline.Len() && e.timeline.Resolved(start) {
		start++
	}
	if end < start {
		end = start
	}
	e.timeline.SetActive(start, end)
}

func (e *Engine) check(i int, n *game.Note, now float64) {
	state := e.timeline.State(i)
	position := e.layout.Position(n.Sec, now)
	missLine := e.layout.MissLine(e.Window())

	if !n.IsHold() {
		if CheckMiss(n, &state, position, missLine, e.layout.Direction, e.layout.NoteHeight) {
			e.timeline.MarkMissed(i)
			// Mines that scroll by were dodged
			if n.Judgeable() {
				e.resolve(i, game.Miss, now)
			}
		}
		return
	}

	if !state.Hit {
		if CheckMiss(n, &state, position, missLine, e.layout.Direction, e.layout.NoteHeight) {
			e.timeline.MarkMissed(i)
			e.resolve(i, game.Miss, now)
		}
		return
	}

	active := nil != e.activation && e.activation.Active(n.Column) == n
	e.timeline.SetHoldActive(i, active)
	if active {
		delete(e.released, i)
		height := math.Max(0, n.SecEnd-math.Max(now, n.Sec)) * e.layout.PixelsPerSecond
		e.timeline.SetVisibleHeight(i, &height)
		if now >= n.SecEnd {
			e.timeline.MarkFinished(i)
			e.resolve(i, state.Result, now)
		}
		return
	}

	released, ok := e.released[i]
	if !ok {
		released = e.releaseTime(n, now)
		e.released[i] = released
	}
	switch {
	case released < n.SecEnd-e.config.HoldGrace:
		delete(e.released, i)
		e.timeline.MarkMissed(i)
		e.resolve(i, game.Miss, now)
	case now >= n.SecEnd:
		delete(e.released, i)
		e.timeline.MarkFinished(i)
		e.resolve(i, state.Result, now)
	}
}

// releaseTime is when n stopped being kept alive, never later than now.
func (e *Engine) releaseTime(n *game.Note, now float64) float64 {
	if r, ok := e.activation.(Releases); ok {
		return math.Min(r.ReleasedAt(n.Column), now)
	}
	return now
}

func (e *Engine) resolve(i int, result game.Judgement, sec float64) {
	result = e.mods.remap(result)
	tier := &e.config.Tiers[result]
	delta := e.mods.score(result, tier.Score)

	e.state.Score += delta
	e.state.Counts[result]++
	switch tier.Combo {
	case ComboIncrement:
		e.state.Combo++
		if e.state.Combo > e.state.MaxCombo {
			e.state.MaxCombo = e.state.Combo
		}
	case ComboBreak:
		if nil == e.shield || !e.shield.Absorb() {
			e.state.Combo = 0
		}
	}

	event := Event{
		Index:      i,
		Note:       *e.timeline.Note(i),
		Result:     result,
		ScoreDelta: delta,
		Combo:      e.state.Combo,
		Sec:        sec,
	}
	for _, l := range e.listeners {
		l.OnJudgement(event)
	}
}
