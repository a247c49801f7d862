package files

import "errors"

var (
	// ErrMissingURL is returned when a file reference carries no URL
	ErrMissingURL = errors.New("file reference is missing a url")
	// ErrUnknownReferenceType is returned when a file reference has an
	// unrecognized type tag
	ErrUnknownReferenceType = errors.New("unknown file reference type")
)
