// Package config holds every tunable of the program. Nothing reads it
// globally: commands load it once and hand the parts down.
package config

import (
	"fmt"
	"strings"
	"time"

	"git.lost.host/meutraa/stepchart/internal/game"
	"git.lost.host/meutraa/stepchart/internal/judge"
)

type Config struct {
	LogLevel string `koanf:"log_level"`

	// Seconds added to every chart offset, to calibrate audio latency
	Offset float64 `koanf:"offset"`
	// Seconds of silence before the music starts
	Delay float64 `koanf:"delay"`
	// Playback speed of the music
	Rate float64 `koanf:"rate"`

	// One key per column, left to right
	Keys string `koanf:"keys"`
	// How long a key is held after its last repeat
	RepeatTimeout time.Duration `koanf:"repeat_timeout"`
	// How often a roll must be tapped, in seconds
	RollWindow float64 `koanf:"roll_window"`

	ScoresPath  string `koanf:"scores_path"`
	MetricsAddr string `koanf:"metrics_addr"`

	Judgement Judgement `koanf:"judge"`
	Scroll    Scroll    `koanf:"scroll"`
}

// Judgement tables are keyed by lower case judgement name.
type Judgement struct {
	Windows        map[string]float64 `koanf:"windows"`
	Scores         map[string]uint64  `koanf:"scores"`
	Weights        map[string]float64 `koanf:"weights"`
	BooBreaksCombo bool               `koanf:"boo_breaks_combo"`
	HoldGrace      float64            `koanf:"hold_grace"`
}

type Scroll struct {
	Reverse bool `koanf:"reverse"`
	// Terminal rows travelled per second
	Speed float64 `koanf:"speed"`
	// Rows between the bottom of the terminal and the judge line
	BarRow int `koanf:"bar_row"`
	// Rows a note covers
	NoteHeight float64 `koanf:"note_height"`
	// Terminal columns between lanes
	Spacing int `koanf:"spacing"`
	// Time between frames
	FramePeriod time.Duration `koanf:"frame_period"`
}

func New() *Config {
	c := &Config{
		LogLevel:      "info",
		Delay:         1.5,
		Rate:          1,
		Keys:          "dfjk",
		RepeatTimeout: 500 * time.Millisecond,
		RollWindow:    0.3,
		ScoresPath:    "./scores.db",
		MetricsAddr:   "",
		Judgement: Judgement{
			Windows: map[string]float64{},
			Scores:  map[string]uint64{},
			Weights: map[string]float64{},
		},
		Scroll: Scroll{
			Speed:       20,
			BarRow:      8,
			NoteHeight:  1,
			Spacing:     6,
			FramePeriod: 4 * time.Millisecond,
		},
	}
	d := judge.DefaultConfig()
	for j, tier := range d.Tiers {
		name := key(game.Judgement(j))
		if game.Judgement(j) != game.Miss {
			c.Judgement.Windows[name] = tier.Window
		}
		c.Judgement.Scores[name] = tier.Score
		c.Judgement.Weights[name] = tier.Weight
	}
	c.Judgement.HoldGrace = d.HoldGrace
	return c
}

func key(j game.Judgement) string {
	return strings.ToLower(j.String())
}

// Judge builds the judge configuration.
func (c *Config) Judge() (judge.Config, error) {
	j := judge.DefaultConfig()
	names := []string{}
	for name := range c.Judgement.Windows {
		names = append(names, name)
	}
	for name := range c.Judgement.Scores {
		names = append(names, name)
	}
	for name := range c.Judgement.Weights {
		names = append(names, name)
	}
	for _, name := range names {
		if _, err := judgement(name); nil != err {
			return j, err
		}
	}
	for i := range j.Tiers {
		name := key(game.Judgement(i))
		if w, ok := c.Judgement.Windows[name]; ok && game.Judgement(i) != game.Miss {
			j.Tiers[i].Window = w
		}
		if s, ok := c.Judgement.Scores[name]; ok {
			j.Tiers[i].Score = s
		}
		if w, ok := c.Judgement.Weights[name]; ok {
			j.Tiers[i].Weight = w
		}
	}
	if c.Judgement.BooBreaksCombo {
		j.Tiers[game.Boo].Combo = judge.ComboBreak
	}
	j.HoldGrace = c.Judgement.HoldGrace
	if err := j.Validate(); nil != err {
		return j, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return j, nil
}

func judgement(name string) (game.Judgement, error) {
	for j := range game.JudgementCount {
		if strings.EqualFold(name, game.Judgement(j).String()) {
			return game.Judgement(j), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown judgement %q", ErrInvalidConfig, name)
}

// Layout maps the scroll settings onto a terminal of rows.
func (c *Config) Layout(rows int) judge.Layout {
	l := judge.Layout{
		JudgeLine:       float64(rows - c.Scroll.BarRow),
		Direction:       judge.Down,
		PixelsPerSecond: c.Scroll.Speed,
		NoteHeight:      c.Scroll.NoteHeight,
	}
	if c.Scroll.Reverse {
		l.JudgeLine = float64(c.Scroll.BarRow)
		l.Direction = judge.Up
	}
	return l
}

// Validate checks everything that is not checked where it is used.
func (c *Config) Validate() error {
	if c.Rate <= 0 {
		return fmt.Errorf("%w: rate must be positive", ErrInvalidConfig)
	}
	if len([]rune(c.Keys)) != game.Columns {
		return fmt.Errorf("%w: need %d keys, got %q", ErrInvalidConfig, game.Columns, c.Keys)
	}
	if c.Delay < 0 || c.RollWindow <= 0 || c.RepeatTimeout <= 0 {
		return fmt.Errorf("%w: delay, roll window and repeat timeout must be positive", ErrInvalidConfig)
	}
	if c.Scroll.Speed <= 0 || c.Scroll.BarRow < 0 || c.Scroll.NoteHeight < 0 ||
		c.Scroll.Spacing < 1 || c.Scroll.FramePeriod <= 0 {
		return fmt.Errorf("%w: bad scroll settings", ErrInvalidConfig)
	}
	if _, err := c.Judge(); nil != err {
		return err
	}
	return nil
}
