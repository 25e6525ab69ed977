package metrics

import "errors"

var (
	ErrServe = errors.New("metrics server failed")
)
