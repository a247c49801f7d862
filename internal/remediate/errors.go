package remediate

import "errors"

var (
	// ErrNilArchiver is returned when an executor is constructed without
	// an archiver
	ErrNilArchiver = errors.New("archiver is required")
	// ErrNilUserSource is returned when an executor is constructed without
	// a user source
	ErrNilUserSource = errors.New("user source is required")
)
