package parser

import (
	"errors"
	"fmt"
	"strings"

	"git.lost.host/meutraa/stepchart/internal/game"
	"git.lost.host/meutraa/stepchart/internal/timing"
)

var (
	ErrMissingStartingBpm = timing.ErrMissingStartingBpm
	ErrMalformedDirective = errors.New("malformed directive")
	ErrRowLength          = errors.New("measure length is not a multiple of 4")
	ErrUnknownNoteChar    = errors.New("unrecognized note character")
	ErrUnmatchedHoldEnd   = errors.New("hold end without a hold or roll head")
	ErrHoldAlreadyOpen    = errors.New("hold or roll opened while one is already open")
	ErrUnclosedHold       = errors.New("hold or roll never closed")
)

// ParseError is returned for every chart that cannot be loaded. Err is one
// of the sentinel errors above, or a timing error.
type ParseError struct {
	Err        error
	Tag        string
	Difficulty game.DifficultyKey

	// Location of the offending cell, when Located is set
	Located bool
	Measure int
	Row     int
	Column  int
	Char    byte
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse chart")
	if e.Tag != "" {
		b.WriteString(" ")
		b.WriteString(e.Tag)
	}
	if e.Difficulty != "" {
		fmt.Fprintf(&b, " [%s]", e.Difficulty)
	}
	if e.Located {
		fmt.Fprintf(&b, " measure %d row %d column %d", e.Measure, e.Row, e.Column)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	if e.Char != 0 {
		fmt.Fprintf(&b, " %q", e.Char)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func malformed(tag string, format string, args ...interface{}) error {
	return &ParseError{
		Err: fmt.Errorf("%w: %s", ErrMalformedDirective, fmt.Sprintf(format, args...)),
		Tag: tag,
	}
}
