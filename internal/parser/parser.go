package parser

import (
	"git.lost.host/meutraa/stepchart/internal/game"
	"git.lost.host/meutraa/stepchart/internal/resource"
)

type Parser interface {
	// Parse turns chart text into a Chart, resolving the files it refers to
	// through resolver. It does no I/O of its own.
	Parse(text string, resolver resource.Resolver) (*game.Chart, error)
}
