package timing

import "errors"

var (
	// ErrMissingStartingBpm is returned when there are no bpm changes, or the
	// first one is not at beat 0.
	ErrMissingStartingBpm = errors.New("missing starting bpm")
	ErrInvalidBpm         = errors.New("bpm must be positive")
	ErrInvalidStop        = errors.New("stop length must not be negative")
)
