// Package score keeps a history of play sessions and can judge recorded
// inputs again.
package score

import (
	"context"
	"time"

	"git.lost.host/meutraa/stepchart/internal/game"
	"git.lost.host/meutraa/stepchart/internal/input"
	"git.lost.host/meutraa/stepchart/internal/judge"
	"github.com/google/uuid"
)

type Scorer interface {
	Init(path string) error
	Deinit()

	// Save the result and inputs of a session
	Save(ctx context.Context, chart *game.Chart, key game.DifficultyKey, inputs []input.Event, result Result) (History, error)

	// Load previous sessions of a difficulty, oldest first
	Load(ctx context.Context, chart *game.Chart, key game.DifficultyKey) ([]History, error)
}

// Result is what a session achieved.
type Result struct {
	State    judge.State
	Accuracy float64
	Rate     float64
}

type History struct {
	ID     uuid.UUID
	Sum    string
	Key    game.DifficultyKey
	Played time.Time
	Result Result
	Inputs []input.Event
}
