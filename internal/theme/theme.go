// Package theme decides what notes and judgements look like on a terminal.
package theme

import (
	"git.lost.host/meutraa/stepchart/internal/game"
)

type Theme interface {
	RenderNote(note *game.Note) string
	RenderHoldBody(note *game.Note, active bool) string
	RenderHitField(column uint8) string
	RenderJudgement(j game.Judgement) string
}
