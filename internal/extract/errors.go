package extract

import "errors"

var (
	// ErrNilBlockSource is returned when a resolver is constructed without
	// a block source
	ErrNilBlockSource = errors.New("block source is required")
)
