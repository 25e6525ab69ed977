package score

import (
	"git.lost.host/meutraa/stepchart/internal/input"
)

type InputKind uint8

const (
	KindPress InputKind = iota
	KindRelease
	KindRepeat
)

// InputCompact is one input as stored. Inputs are stored in the order
// they were given to the session, so a press and a release at the same
// time replay the way they were played.
type InputCompact struct {
	Column uint8     `json:"c"`
	Kind   InputKind `json:"k"`
	At     float64   `json:"t"`
}

func compactInputs(inputs []input.Event) []InputCompact {
	ins := make([]InputCompact, 0, len(inputs))
	for _, i := range inputs {
		c := InputCompact{Column: i.Column, At: i.At}
		switch {
		case i.Pressed:
			c.Kind = KindPress
		case i.Repeat:
			c.Kind = KindRepeat
		case i.Released:
			c.Kind = KindRelease
		default:
			continue
		}
		ins = append(ins, c)
	}
	return ins
}

func uncompactInputs(inputs []InputCompact) []input.Event {
	ins := make([]input.Event, 0, len(inputs))
	for _, c := range inputs {
		e := input.Event{Column: c.Column, At: c.At}
		switch c.Kind {
		case KindPress:
			e.Pressed = true
		case KindRelease:
			e.Released = true
		case KindRepeat:
			e.Repeat = true
		default:
			continue
		}
		ins = append(ins, e)
	}
	return ins
}
